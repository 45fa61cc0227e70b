package ffi

import (
	"fmt"

	"github.com/ebitengine/purego"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// Function is a resolved `extern fn` binding: a symbol address plus the
// libffi-style call-interface descriptor built from its declared parameter
// and return types (spec.md §4.9).
type Function struct {
	hdr     value.Header
	Name    string
	lib     *Library
	addr    uintptr
	params  []cType
	ret     cType
}

// Resolve builds the descriptor for name(paramTypeNames…): retTypeName
// against lib and stores it as a TagFFIFunction Value.
func Resolve(lib *Library, name string, paramTypeNames []string, retTypeName string) (value.Value, error) {
	addr, err := lib.Symbol(name)
	if err != nil {
		return value.Value{}, err
	}
	params := make([]cType, len(paramTypeNames))
	for i, n := range paramTypeNames {
		t, err := cTypeOf(n)
		if err != nil {
			return value.Value{}, err
		}
		params[i] = t
	}
	ret, err := cTypeOf(retTypeName)
	if err != nil {
		return value.Value{}, err
	}
	f := &Function{hdr: *value.NewHeader(), Name: name, lib: lib, addr: addr, params: params, ret: ret}
	return value.FromHeap(value.TagFFIFunction, f), nil
}

func (f *Function) Header() *value.Header { return &f.hdr }
func (f *Function) Kind() value.Kind      { return 201 } // outside value's own Kind range; never switched on.
func (f *Function) ReleaseChildren()      {}

// Call marshals args per f's descriptor, invokes the C function through
// purego.SyscallN, and converts the return slot back to a Hemlock Value
// (spec.md §4.9).
func (f *Function) Call(args []value.Value) (value.Value, error) {
	if len(args) != len(f.params) {
		return value.Value{}, fmt.Errorf("ffi: %q expects %d argument(s), got %d", f.Name, len(f.params), len(args))
	}
	slots := make([]uintptr, len(args))
	for i, a := range args {
		s, err := marshalArg(f.params[i], a)
		if err != nil {
			return value.Value{}, err
		}
		slots[i] = s
	}
	r1, _, _ := purego.SyscallN(f.addr, slots...)
	return valueFromSlot(f.ret, r1), nil
}

func AsFFIFunction(v value.Value) *Function {
	if v.Tag != value.TagFFIFunction {
		return nil
	}
	fn, _ := v.Heap.(*Function)
	return fn
}
