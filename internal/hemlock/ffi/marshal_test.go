package ffi

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestCTypeOfMapsAnnotations(t *testing.T) {
	cases := map[string]cType{
		"":       cVoid,
		"null":   cVoid,
		"bool":   cInt,
		"i32":    cInt,
		"u8":     cInt,
		"rune":   cInt,
		"i64":    cInt64,
		"u64":    cUint64,
		"f32":    cFloat32,
		"f64":    cFloat64,
		"string": cCharPtr,
		"buffer": cCharPtr,
		"ptr":    cPtr,
	}
	for name, want := range cases {
		got, err := cTypeOf(name)
		if err != nil {
			t.Errorf("cTypeOf(%q) unexpected error: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("cTypeOf(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCTypeOfRejectsUnknownType(t *testing.T) {
	_, err := cTypeOf("not_a_type")
	if err == nil {
		t.Fatal("cTypeOf on an unknown type name should error")
	}
}

func TestMarshalArgBoolAsInt(t *testing.T) {
	slot, err := marshalArg(cInt, value.Bool(true))
	if err != nil || slot != 1 {
		t.Errorf("marshalArg(cInt, true) = %d, %v; want 1, nil", slot, err)
	}
	slot, err = marshalArg(cInt, value.Bool(false))
	if err != nil || slot != 0 {
		t.Errorf("marshalArg(cInt, false) = %d, %v; want 0, nil", slot, err)
	}
}

func TestMarshalArgIntegerKinds(t *testing.T) {
	slot, _ := marshalArg(cInt, value.I32(42))
	if slot != 42 {
		t.Errorf("marshalArg(cInt, 42) = %d, want 42", slot)
	}
	slot, _ = marshalArg(cInt64, value.I64(-7))
	if int64(slot) != -7 {
		t.Errorf("marshalArg(cInt64, -7) = %d, want -7", int64(slot))
	}
	slot, _ = marshalArg(cUint64, value.U64(99))
	if slot != 99 {
		t.Errorf("marshalArg(cUint64, 99) = %d, want 99", slot)
	}
}

func TestMarshalArgFloatRoundTrips(t *testing.T) {
	slot, _ := marshalArg(cFloat32, value.F32(3.5))
	got := valueFromSlot(cFloat32, slot)
	if got.AsF64() != 3.5 {
		t.Errorf("f32 round trip = %v, want 3.5", got.AsF64())
	}

	slot, _ = marshalArg(cFloat64, value.F64(2.25))
	got = valueFromSlot(cFloat64, slot)
	if got.AsF64() != 2.25 {
		t.Errorf("f64 round trip = %v, want 2.25", got.AsF64())
	}
}

func TestMarshalArgCharPtrString(t *testing.T) {
	slot, err := marshalArg(cCharPtr, value.NewString("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == 0 {
		t.Fatal("marshalling a non-empty string should yield a non-null pointer")
	}
	if got := goStringFromPtr(slot); got != "hello" {
		t.Errorf("goStringFromPtr(marshalArg(string)) = %q, want \"hello\"", got)
	}
}

func TestMarshalArgCharPtrBuffer(t *testing.T) {
	slot, err := marshalArg(cCharPtr, value.NewBuffer([]byte("buf\x00tail")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == 0 {
		t.Fatal("marshalling a non-empty buffer should yield a non-null pointer")
	}
	if got := goStringFromPtr(slot); got != "buf" {
		t.Errorf("goStringFromPtr on a buffer should stop at the first NUL, got %q", got)
	}
}

func TestMarshalArgCharPtrEmptyBuffer(t *testing.T) {
	slot, err := marshalArg(cCharPtr, value.NewBuffer(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != 0 {
		t.Errorf("marshalling an empty buffer should yield a null pointer, got %d", slot)
	}
}

func TestMarshalArgVoidIgnoresValue(t *testing.T) {
	slot, err := marshalArg(cVoid, value.I32(1))
	if err != nil || slot != 0 {
		t.Errorf("marshalArg(cVoid, ...) = %d, %v; want 0, nil", slot, err)
	}
}

func TestValueFromSlotVoidYieldsNull(t *testing.T) {
	v := valueFromSlot(cVoid, 0)
	if v.Tag != value.TagNull {
		t.Errorf("valueFromSlot(cVoid, 0) tag = %s, want null", v.TypeOf())
	}
}

func TestValueFromSlotIntegerKinds(t *testing.T) {
	if v := valueFromSlot(cInt, 7); v.Tag != value.TagI32 || v.AsI64() != 7 {
		t.Errorf("valueFromSlot(cInt, 7) = %v (%s), want i32 7", v.AsI64(), v.TypeOf())
	}
	if v := valueFromSlot(cInt64, uintptr(int64(-3))); v.Tag != value.TagI64 || v.AsI64() != -3 {
		t.Errorf("valueFromSlot(cInt64, -3) = %v (%s), want i64 -3", v.AsI64(), v.TypeOf())
	}
	if v := valueFromSlot(cUint64, 500); v.Tag != value.TagU64 || v.AsU64() != 500 {
		t.Errorf("valueFromSlot(cUint64, 500) = %v (%s), want u64 500", v.AsU64(), v.TypeOf())
	}
}

func TestGoStringFromPtrNullIsEmpty(t *testing.T) {
	if got := goStringFromPtr(0); got != "" {
		t.Errorf("goStringFromPtr(0) = %q, want \"\"", got)
	}
}

func TestCStrLenFindsNulTerminator(t *testing.T) {
	ptr := cStringPtr("abcd")
	if n := cStrLen(ptr); n != 4 {
		t.Errorf("cStrLen(%q) = %d, want 4", "abcd", n)
	}
}

func TestCStringPtrEmptyString(t *testing.T) {
	ptr := cStringPtr("")
	if got := goStringFromPtr(ptr); got != "" {
		t.Errorf("goStringFromPtr(cStringPtr(\"\")) = %q, want \"\"", got)
	}
}
