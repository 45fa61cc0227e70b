// Package ffi implements Hemlock's foreign-function interface (spec.md
// §4.9): dynamic library loading, C call marshalling for `extern fn`
// declarations, and the Hemlock-function-as-C-callback trampoline.
//
// Grounded on github.com/ebitengine/purego (one of the teacher pack's
// cross-platform dynamic-loading dependencies): purego.Dlopen/Dlsym resolve
// symbols without cgo, and purego.NewCallback/SyscallN give the raw,
// reflection-free call surface a dynamically-typed `extern fn` signature
// needs — RegisterFunc's generated-stub approach requires a concrete Go
// function type known at compile time, which a declaration resolved at
// script run time cannot supply.
package ffi

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// Library is a loaded shared object, the target `extern fn` declarations
// resolve symbols against (spec.md §4.9's "current import target").
type Library struct {
	path   string
	handle uintptr

	mu      sync.Mutex
	symbols map[string]uintptr
}

// Open loads path via dlopen, applying the platform suffix rewrite purego
// already performs internally (.so → .dylib on Darwin, etc).
func Open(path string) (*Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("ffi: failed to load library %q: %w", path, err)
	}
	return &Library{path: path, handle: h, symbols: make(map[string]uintptr)}, nil
}

func (l *Library) Path() string { return l.path }

// Symbol resolves and caches name's address within the library.
func (l *Library) Symbol(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if addr, ok := l.symbols[name]; ok {
		return addr, nil
	}
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("ffi: symbol %q not found in %q: %w", name, l.path, err)
	}
	l.symbols[name] = addr
	return addr, nil
}

// cTypeOf maps a Hemlock type annotation name to the C marshalling kind
// spec.md §4.9 describes: strings as char*, bools as int, null as void,
// every other declared type by its own numeric/pointer representation.
type cType int

const (
	cVoid cType = iota
	cInt
	cInt64
	cUint64
	cFloat32
	cFloat64
	cCharPtr
	cPtr
)

func cTypeOf(name string) (cType, error) {
	switch name {
	case "", "null":
		return cVoid, nil
	case "bool", "i8", "u8", "i16", "u16", "i32", "u32", "rune":
		return cInt, nil
	case "i64":
		return cInt64, nil
	case "u64":
		return cUint64, nil
	case "f32":
		return cFloat32, nil
	case "f64":
		return cFloat64, nil
	case "string", "buffer":
		return cCharPtr, nil
	case "ptr":
		return cPtr, nil
	default:
		return cVoid, fmt.Errorf("ffi: type %q is not a valid extern fn parameter/return type", name)
	}
}

// valueFromSlot converts a marshalled uintptr slot back into a Hemlock Value,
// used to reconstruct a return value or callback argument.
func valueFromSlot(t cType, slot uintptr) value.Value {
	switch t {
	case cVoid:
		return value.Null()
	case cInt:
		return value.I32(int32(slot))
	case cInt64:
		return value.I64(int64(slot))
	case cUint64:
		return value.U64(uint64(slot))
	case cFloat32:
		return value.F32(float32frombits(uint32(slot)))
	case cFloat64:
		return value.F64(float64frombits(uint64(slot)))
	case cCharPtr:
		return value.NewString(goStringFromPtr(slot))
	case cPtr:
		return value.PtrVal(ptrFromUintptr(slot))
	default:
		return value.Null()
	}
}
