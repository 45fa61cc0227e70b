package coerce

import (
	"math"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// intRange returns the inclusive [min,max] range (as int64/uint64 pairs,
// interpreted per signedness) a target integer tag can represent.
func intRange(tag value.Tag) (lo int64, hi uint64) {
	switch tag {
	case value.TagI8:
		return math.MinInt8, math.MaxInt8
	case value.TagI16:
		return math.MinInt16, math.MaxInt16
	case value.TagI32:
		return math.MinInt32, math.MaxInt32
	case value.TagI64:
		return math.MinInt64, math.MaxInt64
	case value.TagU8:
		return 0, math.MaxUint8
	case value.TagU16:
		return 0, math.MaxUint16
	case value.TagU32:
		return 0, math.MaxUint32
	case value.TagU64:
		return 0, math.MaxUint64
	}
	return 0, 0
}

func inRange(tag value.Tag, v int64, isSigned bool) bool {
	lo, hi := intRange(tag)
	if tag.IsSigned() {
		return v >= lo && v <= int64(hi)
	}
	if !isSigned && v < 0 {
		return false
	}
	return uint64(v) <= hi && v >= 0
}

// EvalDefaultFunc evaluates a field's default-value expression (an
// astiface.Expr, passed through as `any` so coerce does not depend on
// astiface or env) in the supplied validation environment.
type EvalDefaultFunc func(expr any, env any) (value.Value, error)

// ToType implements convert_to_type from spec.md §4.3: integer→integer
// range-checks; float→integer truncates then range-checks; integer→float
// widens; string/bool/ptr/buffer to the same primitive type pass through;
// a declared object type triggers duck-typed shape validation via
// ValidateObject. Anything else throws.
func ToType(v value.Value, td *value.TypeDescriptor, evalDefault EvalDefaultFunc, validationEnv any) (value.Value, error) {
	if td == nil {
		return v, nil
	}
	if td.IsObject {
		return ValidateObject(v, td, evalDefault, validationEnv)
	}
	target := td.Primitive

	if target.IsInteger() && v.Tag.IsInteger() {
		raw := v.AsI64()
		if !v.Tag.IsSigned() {
			raw = int64(v.AsU64())
			if v.AsU64() > math.MaxInt64 {
				// Unrepresentable as int64; only valid if target is u64 and raw range covers it.
				if target == value.TagU64 {
					return value.U64(v.AsU64()), nil
				}
				return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "value out of range for %s", target.TypeName())
			}
		}
		if !inRange(target, raw, v.Tag.IsSigned()) {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "value %d out of range for %s", raw, target.TypeName())
		}
		return narrowInt(target, raw), nil
	}

	if target.IsInteger() && v.Tag.IsFloat() {
		truncated := int64(v.AsF64())
		if !inRange(target, truncated, true) {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "value %v out of range for %s", v.AsF64(), target.TypeName())
		}
		return narrowInt(target, truncated), nil
	}

	if target.IsFloat() && v.Tag.IsInteger() {
		f := float64(v.AsI64())
		if !v.Tag.IsSigned() {
			f = float64(v.AsU64())
		}
		if target == value.TagF32 {
			return value.F32(float32(f)), nil
		}
		return value.F64(f), nil
	}

	if target.IsFloat() && v.Tag.IsFloat() {
		if target == value.TagF32 {
			return value.F32(float32(v.AsF64())), nil
		}
		return value.F64(v.AsF64()), nil
	}

	if target == v.Tag {
		switch target {
		case value.TagString, value.TagBool, value.TagPtr, value.TagBuffer:
			return v, nil
		}
	}

	return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "cannot convert %s to %s", v.TypeOf(), target.TypeName())
}

func narrowInt(target value.Tag, raw int64) value.Value {
	if target.IsSigned() {
		return wrapSigned(target, raw)
	}
	return wrapUnsigned(target, uint64(raw))
}

// ValidateObject implements the duck-typed object validation spec.md §4.3
// describes: every required field must be present; missing optional fields
// are materialized from their default expression (evaluated via
// evalDefault in validationEnv) or null; present fields whose declared
// type is primitive are range/shape-checked recursively. On success the
// object is tagged with td.Name for typeof().
func ValidateObject(v value.Value, td *value.TypeDescriptor, evalDefault EvalDefaultFunc, validationEnv any) (value.Value, error) {
	obj := value.AsObject(v)
	if obj == nil {
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "expected object matching type %q, got %s", td.Name, v.TypeOf())
	}
	for _, field := range td.Fields {
		fv, present := obj.Get(field.Name)
		if !present {
			if !field.Optional && field.Default == nil {
				return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "object missing required field %q of type %q", field.Name, td.Name)
			}
			var materialized value.Value
			if field.Default != nil {
				dv, err := evalDefault(field.Default, validationEnv)
				if err != nil {
					return value.Value{}, err
				}
				materialized = dv
			} else {
				materialized = value.Null()
			}
			obj.Set(field.Name, materialized)
			continue
		}
		if field.Type != nil && !field.Type.IsObject {
			converted, err := ToType(fv, field.Type, evalDefault, validationEnv)
			if err != nil {
				return value.Value{}, err
			}
			obj.Set(field.Name, converted)
		}
	}
	obj.TypeName = td.Name
	return v, nil
}
