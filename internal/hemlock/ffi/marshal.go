package ffi

import (
	"math"
	"unsafe"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }

func ptrFromUintptr(p uintptr) unsafe.Pointer { return unsafe.Pointer(p) } //nolint:govet // ffi boundary

func goStringFromPtr(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := (*byte)(unsafe.Pointer(p))
	return unsafe.String(ptr, cStrLen(p))
}

func cStrLen(p uintptr) int {
	n := 0
	for {
		b := *(*byte)(unsafe.Pointer(p + uintptr(n)))
		if b == 0 {
			return n
		}
		n++
	}
}

// marshalArg packs a Hemlock Value into the uintptr slot purego.SyscallN
// expects, per the declared C parameter kind (spec.md §4.9: strings pass as
// char* to a NUL-terminated copy of their UTF-8 bytes, buffers as a pointer
// to their own bytes, bools as int, others by their numeric representation).
func marshalArg(t cType, v value.Value) (uintptr, error) {
	switch t {
	case cVoid:
		return 0, nil
	case cInt:
		if v.Tag == value.TagBool {
			if v.Truthy() {
				return 1, nil
			}
			return 0, nil
		}
		return uintptr(uint32(v.AsI64())), nil
	case cInt64:
		return uintptr(v.AsI64()), nil
	case cUint64:
		return uintptr(v.AsU64()), nil
	case cFloat32:
		return uintptr(math.Float32bits(float32(v.AsF64()))), nil
	case cFloat64:
		return uintptr(math.Float64bits(v.AsF64())), nil
	case cCharPtr:
		if s := value.AsString(v); s != nil {
			return cStringPtr(s.Data()), nil
		}
		if b := value.AsBuffer(v); b != nil {
			return bufferPtr(b.Bytes()), nil
		}
		return 0, nil
	case cPtr:
		if v.Tag == value.TagPtr {
			return uintptr(v.Ptr), nil
		}
		return 0, nil
	default:
		return 0, nil
	}
}

// cStringPtr returns a pointer to a NUL-terminated copy of s. The copy is
// intentionally leaked for the duration of the call: the callee may retain
// it only for the call's lifetime per the C calling convention, and Go's GC
// cannot see into C, so pinning would require cgo; acceptable because these
// calls are typically short strings (paths, names) rather than a hot loop.
func cStringPtr(s string) uintptr {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return uintptr(unsafe.Pointer(&b[0]))
}

func bufferPtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
