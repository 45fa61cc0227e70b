package builtin

import (
	"strings"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func dispatchString(recv value.Value, method string, args []value.Value) (value.Value, error) {
	s := value.AsString(recv)
	switch method {
	case "substr":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		return value.NewString(substrRunes(s.Data(), intArg(args[0]), intArg(args[1]))), nil
	case "slice":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		start, end := intArg(args[0]), intArg(args[1])
		return value.NewString(substrRunes(s.Data(), start, end-start)), nil
	case "find":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		needle := value.AsString(args[0]).Data()
		idx := strings.Index(s.Data(), needle)
		if idx < 0 {
			return value.I32(-1), nil
		}
		return value.I32(int32(len([]rune(s.Data()[:idx])))), nil
	case "contains":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		return value.Bool(strings.Contains(s.Data(), value.AsString(args[0]).Data())), nil
	case "split":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		sep := value.AsString(args[0]).Data()
		var parts []string
		if sep == "" {
			parts = strings.Split(s.Data(), "")
		} else {
			parts = strings.Split(s.Data(), sep)
		}
		elems := make([]value.Value, len(parts))
		for i, p := range parts {
			elems[i] = value.NewString(p)
		}
		return value.NewArray(elems), nil
	case "trim":
		return value.NewString(strings.TrimSpace(s.Data())), nil
	case "to_upper":
		return value.NewString(strings.ToUpper(s.Data())), nil
	case "to_lower":
		return value.NewString(strings.ToLower(s.Data())), nil
	case "starts_with":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		return value.Bool(strings.HasPrefix(s.Data(), value.AsString(args[0]).Data())), nil
	case "ends_with":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		return value.Bool(strings.HasSuffix(s.Data(), value.AsString(args[0]).Data())), nil
	case "replace":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		old, new := value.AsString(args[0]).Data(), value.AsString(args[1]).Data()
		return value.NewString(strings.Replace(s.Data(), old, new, 1)), nil
	case "replace_all":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		old, new := value.AsString(args[0]).Data(), value.AsString(args[1]).Data()
		return value.NewString(strings.ReplaceAll(s.Data(), old, new)), nil
	case "repeat":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		n := intArg(args[0])
		if n < 0 {
			n = 0
		}
		return value.NewString(strings.Repeat(s.Data(), n)), nil
	case "char_at":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		b, ok := s.ByteAt(intArg(args[0]))
		if !ok {
			return value.Value{}, indexError("char_at index out of bounds")
		}
		return value.U8(b), nil
	case "chars":
		return value.NewArray(s.Chars()), nil
	case "bytes", "to_bytes":
		return value.NewBuffer(s.Bytes()), nil
	case "byte_at":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		b, ok := s.ByteAt(intArg(args[0]))
		if !ok {
			return value.Value{}, indexError("byte_at index out of bounds")
		}
		return value.U8(b), nil
	default:
		return value.Value{}, methodNotFound(recv, method)
	}
}

// substrRunes returns the substring of s starting at the 0-based codepoint
// position start and spanning at most length codepoints (spec.md §4.7).
func substrRunes(s string, start, length int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := start + length
	if length < 0 || end > len(runes) {
		end = len(runes)
	}
	if end < start {
		end = start
	}
	return string(runes[start:end])
}
