package builtin

import (
	"strconv"
	"strings"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func dispatchObject(recv value.Value, method string, args []value.Value) (value.Value, error) {
	switch method {
	case "serialize":
		s, err := Serialize(recv)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	default:
		return value.Value{}, methodNotFound(recv, method)
	}
}

// Serialize implements the JSON-producing `serialize()` built-in (spec.md
// §4.7, §6). Cycle detection tracks both object and array heap addresses in
// one visited set — spec.md §9's open question notes the source tracked
// only objects (and in one place miscast an array pointer into that set);
// this implementation's single map keyed by value.Heap closes that gap.
func Serialize(v value.Value) (string, error) {
	var b strings.Builder
	visited := make(map[value.Heap]bool)
	if err := serializeInto(&b, v, visited); err != nil {
		return "", err
	}
	return b.String(), nil
}

// formatFloatRoundTrippable renders f the way Deserialize's JSON number
// scanner expects to see a float: strconv's shortest 'g' form drops the
// decimal point for whole numbers (3.0 -> "3"), which Deserialize would
// otherwise read back as an integer, not a float.
func formatFloatRoundTrippable(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func serializeInto(b *strings.Builder, v value.Value, visited map[value.Heap]bool) error {
	switch v.Tag {
	case value.TagNull:
		b.WriteString("null")
	case value.TagBool:
		b.WriteString(strconv.FormatBool(v.AsBool()))
	case value.TagString:
		b.WriteString(strconv.Quote(value.AsString(v).Data()))
	case value.TagRune:
		b.WriteString(strconv.Quote(string(v.AsRune())))
	case value.TagF32, value.TagF64:
		b.WriteString(formatFloatRoundTrippable(v.AsF64()))
	case value.TagArray:
		if visited[v.Heap] {
			return cycleError()
		}
		visited[v.Heap] = true
		defer delete(visited, v.Heap)
		arr := value.AsArray(v)
		b.WriteByte('[')
		for i, e := range arr.Values() {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := serializeInto(b, e, visited); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case value.TagObject:
		if visited[v.Heap] {
			return cycleError()
		}
		visited[v.Heap] = true
		defer delete(visited, v.Heap)
		obj := value.AsObject(v)
		b.WriteByte('{')
		for i, name := range obj.Names() {
			if i > 0 {
				b.WriteByte(',')
			}
			fv, _ := obj.Get(name)
			b.WriteString(strconv.Quote(name))
			b.WriteByte(':')
			if err := serializeInto(b, fv, visited); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		if v.Tag.IsInteger() {
			if v.Tag.IsSigned() {
				b.WriteString(strconv.FormatInt(v.AsI64(), 10))
			} else {
				b.WriteString(strconv.FormatUint(v.AsU64(), 10))
			}
			return nil
		}
		return diagnostics.New(diagnostics.CategoryCoercion, "cannot serialize value of type %s", v.TypeOf())
	}
	return nil
}

func cycleError() error {
	return diagnostics.New(diagnostics.CategoryCoercion, "cannot serialize: cyclic object graph")
}

// Deserialize parses canonical JSON into Hemlock values (spec.md §6):
// integers fit i32 if in range else i64, any numeric literal with a decimal
// point or exponent yields f64, objects are untyped.
func Deserialize(s string) (value.Value, error) {
	p := &jsonParser{src: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return value.Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "trailing data after JSON value")
	}
	return v, nil
}
