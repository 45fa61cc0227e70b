package builtin

import (
	"fmt"
	"strconv"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// displayString renders v the way print() and string concatenation do
// (spec.md §8 scenario 2's rune format, and the implicit stringification
// `"caught:" + e` relies on in scenario 6). Exported as Display for reuse by
// eval's `+` operator and the print library shim.
func displayString(v value.Value) string { return Display(v) }

// Display converts any Value to its textual form.
func Display(v value.Value) string {
	switch v.Tag {
	case value.TagNull:
		return "null"
	case value.TagBool:
		return strconv.FormatBool(v.AsBool())
	case value.TagRune:
		r := v.AsRune()
		if r < 0x80 {
			return string(r)
		}
		return fmt.Sprintf("U+%04X", r)
	case value.TagString:
		return value.AsString(v).Data()
	case value.TagF32, value.TagF64:
		return strconv.FormatFloat(v.AsF64(), 'g', -1, 64)
	default:
		if v.Tag.IsInteger() {
			if v.Tag.IsSigned() {
				return strconv.FormatInt(v.AsI64(), 10)
			}
			return strconv.FormatUint(v.AsU64(), 10)
		}
		if v.Tag == value.TagArray {
			return displayArray(v)
		}
		if v.Tag == value.TagObject {
			s, err := Serialize(v)
			if err == nil {
				return s
			}
		}
		return v.TypeOf()
	}
}

func displayArray(v value.Value) string {
	arr := value.AsArray(v)
	out := "["
	for i, e := range arr.Values() {
		if i > 0 {
			out += ", "
		}
		if e.Tag == value.TagString {
			out += strconv.Quote(value.AsString(e).Data())
		} else {
			out += Display(e)
		}
	}
	return out + "]"
}
