package value

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Header is embedded in every heap-backed entity. Reference counting is
// atomic (sequentially consistent) because Values move across OS threads via
// channel send/recv and spawn's argument binding.
//
// Grounded on the retain/release/cycle bookkeeping in the teacher's
// internal/runtime/refcount_optimizer.go, stripped of its optimizer/strategy
// machinery down to the concrete contract spec.md §4.1 and §9 require.
type Header struct {
	refs  int64
	freed int32
}

// NewHeader returns a Header with an initial reference count of one, as held
// by the Value the caller is about to construct.
func NewHeader() *Header { return &Header{refs: 1} }

func (h *Header) Retain() { atomic.AddInt64(&h.refs, 1) }

// RefCount reports the current reference count; intended for diagnostics and
// tests only.
func (h *Header) RefCount() int64 { return atomic.LoadInt64(&h.refs) }

// Freed reports whether free(x) or a ref-count-zero release has tombstoned
// this entity.
func (h *Header) Freed() bool { return atomic.LoadInt32(&h.freed) != 0 }

// Heap is implemented by every heap-backed entity kind: string, buffer,
// array, object, function, file, task, channel, ffi-function. Concurrency
// and ffi define their own Task/Channel/FFIFunction kinds implementing this
// interface so that value does not import them.
type Heap interface {
	Header() *Header
	Kind() Kind
	// ReleaseChildren runs the entity's destructor: release every Value it
	// contains. Called at most once per entity (release and Free both gate
	// it behind a CAS on the tombstone flag), so it never needs to guard
	// against re-entry itself.
	ReleaseChildren()
}

// Value is the tagged variant every Hemlock runtime datum is represented as.
// Value itself is a plain Go struct safe to copy; Retain/Release manage the
// heap entity a Value may point to.
type Value struct {
	Tag  Tag
	bits uint64 // raw bit pattern for bool/integers/f32/f64/rune
	Type *TypeDescriptor
	Ptr  unsafe.Pointer
	Heap Heap
}

// ---- constructors ----

func Null() Value { return Value{Tag: TagNull} }

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{Tag: TagBool, bits: bits}
}

func I8(v int8) Value   { return Value{Tag: TagI8, bits: uint64(uint8(v))} }
func U8(v uint8) Value  { return Value{Tag: TagU8, bits: uint64(v)} }
func I16(v int16) Value { return Value{Tag: TagI16, bits: uint64(uint16(v))} }
func U16(v uint16) Value{ return Value{Tag: TagU16, bits: uint64(v)} }
func I32(v int32) Value { return Value{Tag: TagI32, bits: uint64(uint32(v))} }
func U32(v uint32) Value{ return Value{Tag: TagU32, bits: uint64(v)} }
func I64(v int64) Value { return Value{Tag: TagI64, bits: uint64(v)} }
func U64(v uint64) Value{ return Value{Tag: TagU64, bits: v} }
func F32(v float32) Value {
	return Value{Tag: TagF32, bits: uint64(math.Float32bits(v))}
}
func F64(v float64) Value {
	return Value{Tag: TagF64, bits: math.Float64bits(v)}
}
func Rune(r rune) Value { return Value{Tag: TagRune, bits: uint64(uint32(r))} }

func TypeVal(td *TypeDescriptor) Value { return Value{Tag: TagType, Type: td} }

func PtrVal(p unsafe.Pointer) Value { return Value{Tag: TagPtr, Ptr: p} }

// FromHeap wraps a heap entity in a Value of the given tag. The caller must
// already hold a retained reference (entities are constructed with refs=1).
func FromHeap(tag Tag, h Heap) Value { return Value{Tag: tag, Heap: h} }

// ---- scalar accessors ----

func (v Value) AsBool() bool { return v.bits != 0 }

func (v Value) AsRune() rune { return rune(uint32(v.bits)) }

// AsI64 sign/zero-extends any integer tag to int64.
func (v Value) AsI64() int64 {
	switch v.Tag {
	case TagI8:
		return int64(int8(v.bits))
	case TagI16:
		return int64(int16(v.bits))
	case TagI32:
		return int64(int32(v.bits))
	case TagI64:
		return int64(v.bits)
	case TagU8, TagU16, TagU32, TagU64:
		return int64(v.bits)
	default:
		return 0
	}
}

// AsU64 zero-extends any integer tag to uint64 (reinterpreting signed bits).
func (v Value) AsU64() uint64 {
	switch v.Tag {
	case TagI8:
		return uint64(uint8(v.bits))
	case TagI16:
		return uint64(uint16(v.bits))
	case TagI32:
		return uint64(uint32(v.bits))
	case TagI64, TagU64:
		return v.bits
	case TagU8, TagU16, TagU32:
		return v.bits
	default:
		return 0
	}
}

// AsF64 converts any numeric tag to float64; integers convert by value.
func (v Value) AsF64() float64 {
	switch v.Tag {
	case TagF32:
		return float64(math.Float32frombits(uint32(v.bits)))
	case TagF64:
		return math.Float64frombits(v.bits)
	case TagI8, TagI16, TagI32, TagI64:
		return float64(v.AsI64())
	case TagU8, TagU16, TagU32, TagU64:
		return float64(v.AsU64())
	default:
		return 0
	}
}

// ---- truthiness, typeof ----

// Truthy implements spec.md §4.4's if/while condition rules: null, zero
// numerics, false, and empty strings are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.Tag {
	case TagNull:
		return false
	case TagBool:
		return v.AsBool()
	case TagRune:
		return v.AsRune() != 0
	default:
		if v.Tag.IsInteger() {
			return v.AsU64() != 0
		}
		if v.Tag.IsFloat() {
			return v.AsF64() != 0
		}
		if v.Tag == TagString {
			return AsString(v).ByteLen() > 0
		}
		return true
	}
}

// TypeOf implements the typeof() builtin: registered object types report
// their tag name, everything else reports its Tag's fixed name.
func (v Value) TypeOf() string {
	if v.Tag == TagObject {
		if obj := AsObject(v); obj != nil && obj.TypeName != "" {
			return obj.TypeName
		}
	}
	return v.Tag.TypeName()
}

// ---- reference counting ----

// Retain increments the referenced heap entity's count. No-op for non-heap
// variants.
func Retain(v Value) {
	if v.Heap != nil {
		v.Heap.Header().Retain()
	}
}

// Release decrements the referenced heap entity's count, destroying it (and
// recursively releasing everything it contains) if the count reaches zero.
// No-op for non-heap variants or for entities already tombstoned by free().
func Release(v Value) {
	if v.Heap == nil {
		return
	}
	release(v.Heap)
}

// release decrements hdr.refs and, if it reaches zero, tears the entity down.
// The tombstone flag is set by a single atomic compare-and-swap *before*
// ReleaseChildren runs, so it doubles as the "already-being-freed" guard
// spec.md §9 calls for: a reference cycle whose combined count reaches zero
// together recurses back into one of its own members' release, observes
// Freed() already true, and returns instead of looping or double-freeing.
func release(h Heap) {
	hdr := h.Header()
	if hdr.Freed() {
		return
	}
	if atomic.AddInt64(&hdr.refs, -1) > 0 {
		return
	}
	if !atomic.CompareAndSwapInt32(&hdr.freed, 0, 1) {
		return
	}
	h.ReleaseChildren()
}

// Free forcibly tombstones a heap entity regardless of its current reference
// count, per spec.md §4.1: subsequent Release calls from any other surviving
// Value handle become no-ops. Only buffers, arrays, and objects may be freed
// this way (spec.md §9's narrower, safer redesign of the source's free(x));
// calling it on any other tag is a caller error reported by the evaluator,
// not by this package.
func Free(v Value) {
	if v.Heap == nil {
		return
	}
	hdr := v.Heap.Header()
	if !atomic.CompareAndSwapInt32(&hdr.freed, 0, 1) {
		return
	}
	v.Heap.ReleaseChildren()
}

// Freeable reports whether v's tag is one free() is permitted to operate on.
func Freeable(v Value) bool {
	switch v.Tag {
	case TagBuffer, TagArray, TagObject:
		return true
	default:
		return false
	}
}

// ---- equality ----

// Equal implements spec.md §4.4's equality rules: numerics compare by
// promoted magnitude, strings by byte content, objects/arrays/everything
// heap-backed by identity, null equals only null, and differing non-numeric
// tags are never equal.
func Equal(a, b Value) bool {
	if a.Tag == TagNull || b.Tag == TagNull {
		return a.Tag == TagNull && b.Tag == TagNull
	}
	if a.Tag.IsNumeric() && b.Tag.IsNumeric() {
		if a.Tag.IsFloat() || b.Tag.IsFloat() {
			return a.AsF64() == b.AsF64()
		}
		if a.Tag.IsSigned() || b.Tag.IsSigned() {
			return a.AsI64() == b.AsI64()
		}
		return a.AsU64() == b.AsU64()
	}
	if a.Tag == TagRune && b.Tag == TagRune {
		return a.AsRune() == b.AsRune()
	}
	if a.Tag == TagBool && b.Tag == TagBool {
		return a.AsBool() == b.AsBool()
	}
	if a.Tag == TagString && b.Tag == TagString {
		return AsString(a).Data() == AsString(b).Data()
	}
	if a.Tag != b.Tag {
		return false
	}
	if a.Tag.IsHeap() {
		return a.Heap == b.Heap
	}
	if a.Tag == TagPtr {
		return a.Ptr == b.Ptr
	}
	if a.Tag == TagType {
		return a.Type == b.Type
	}
	return false
}
