// Package coerce implements Hemlock's numeric rank promotion, range-checked
// narrowing, and duck-typed object shape validation (spec.md §4.3).
package coerce

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// rank gives the total ordering spec.md §4.3 specifies:
// i8<u8<i16<u16<i32<u32<i64<u64<f32<f64. value.Tag's numeric constants are
// already declared in exactly this order, so rank is just the tag's
// ordinal distance from TagI8.
func rank(t value.Tag) int { return int(t - value.TagI8) }

// Promote returns the common rank two numeric operands promote to for
// binary arithmetic and comparison (spec.md §4.3): the higher of the two
// ranks, except signed-vs-unsigned comparisons promote to the signed side
// when ranks would otherwise tie on width — value.Tag's ordering already
// places every unsigned rank above its same-width signed rank, so taking
// the higher tag is correct for arithmetic; Compare overrides this for the
// signed/unsigned magnitude special case.
func Promote(a, b value.Tag) value.Tag {
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// Arith evaluates a binary arithmetic operator over two numeric Values,
// promoting to their common rank and preserving that rank in the result
// (spec.md §4.4). Integer division/modulo by zero and float division by
// zero both throw rather than producing wraparound/NaN/Inf.
func Arith(op string, a, b value.Value) (value.Value, error) {
	if !a.Tag.IsNumeric() || !b.Tag.IsNumeric() {
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "arithmetic requires numeric operands, got %s and %s", a.TypeOf(), b.TypeOf())
	}
	common := Promote(a.Tag, b.Tag)
	if common.IsFloat() {
		x, y := a.AsF64(), b.AsF64()
		if (op == "/" || op == "%") && y == 0 {
			return value.Value{}, diagnostics.New(diagnostics.CategoryDivByZero, "division by zero")
		}
		var r float64
		switch op {
		case "+":
			r = x + y
		case "-":
			r = x - y
		case "*":
			r = x * y
		case "/":
			r = x / y
		case "%":
			r = float64(int64(x) % int64(y))
		default:
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "unsupported operator %q", op)
		}
		if common == value.TagF32 {
			return value.F32(float32(r)), nil
		}
		return value.F64(r), nil
	}

	if common.IsSigned() {
		x, y := a.AsI64(), b.AsI64()
		if (op == "/" || op == "%") && y == 0 {
			return value.Value{}, diagnostics.New(diagnostics.CategoryDivByZero, "division by zero")
		}
		var r int64
		switch op {
		case "+":
			r = x + y
		case "-":
			r = x - y
		case "*":
			r = x * y
		case "/":
			r = x / y
		case "%":
			r = x % y
		default:
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "unsupported operator %q", op)
		}
		return wrapSigned(common, r), nil
	}

	x, y := a.AsU64(), b.AsU64()
	if (op == "/" || op == "%") && y == 0 {
		return value.Value{}, diagnostics.New(diagnostics.CategoryDivByZero, "division by zero")
	}
	var r uint64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/":
		r = x / y
	case "%":
		r = x % y
	default:
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "unsupported operator %q", op)
	}
	return wrapUnsigned(common, r), nil
}

// wrapSigned truncates r into the target rank's width using two's-complement
// wraparound (Go's native conversion semantics for fixed-width signed ints).
func wrapSigned(tag value.Tag, r int64) value.Value {
	switch tag {
	case value.TagI8:
		return value.I8(int8(r))
	case value.TagI16:
		return value.I16(int16(r))
	case value.TagI32:
		return value.I32(int32(r))
	default:
		return value.I64(r)
	}
}

func wrapUnsigned(tag value.Tag, r uint64) value.Value {
	switch tag {
	case value.TagU8:
		return value.U8(uint8(r))
	case value.TagU16:
		return value.U16(uint16(r))
	case value.TagU32:
		return value.U32(uint32(r))
	default:
		return value.U64(r)
	}
}

// Compare evaluates a magnitude comparison ("<","<=",">",">=") over two
// numeric Values, promoting to the common rank first; if either operand is
// signed the comparison promotes to the signed side regardless of
// value.Tag's unsigned-above-signed ordering (spec.md §4.3).
func Compare(op string, a, b value.Value) (bool, error) {
	if !a.Tag.IsNumeric() || !b.Tag.IsNumeric() {
		return false, diagnostics.New(diagnostics.CategoryCoercion, "comparison requires numeric operands, got %s and %s", a.TypeOf(), b.TypeOf())
	}
	var cmp int
	switch {
	case a.Tag.IsFloat() || b.Tag.IsFloat():
		x, y := a.AsF64(), b.AsF64()
		cmp = cmpFloat(x, y)
	case a.Tag.IsSigned() || b.Tag.IsSigned():
		x, y := a.AsI64(), b.AsI64()
		cmp = cmpInt(x, y)
	default:
		x, y := a.AsU64(), b.AsU64()
		cmp = cmpUint(x, y)
	}
	switch op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, diagnostics.New(diagnostics.CategoryCoercion, "unsupported comparison %q", op)
	}
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func cmpUint(x, y uint64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
