package value

import (
	"sync/atomic"
	"unicode/utf8"
)

// StringObj is a mutable UTF-8 byte buffer with a lazily-computed codepoint
// count. Mutation (byte-index assignment, append) invalidates the cache by
// setting it to -1; the next length query recomputes it (spec.md invariant
// 2: the cache equals utf8_count_codepoints(data) whenever non-negative).
type StringObj struct {
	hdr   Header
	data  []byte
	runes int64 // -1 means "invalidated, recompute"
}

func NewString(s string) Value {
	so := &StringObj{hdr: *NewHeader(), data: []byte(s), runes: -1}
	return FromHeap(TagString, so)
}

func (s *StringObj) Header() *Header { return &s.hdr }
func (s *StringObj) Kind() Kind      { return KindString }

func (s *StringObj) ReleaseChildren() {
	// Strings own only raw bytes; nothing to recursively release.
}

// Data returns the current byte content as a Go string (a copy).
func (s *StringObj) Data() string { return string(s.data) }

func (s *StringObj) Bytes() []byte { return s.data }

func (s *StringObj) ByteLen() int { return len(s.data) }

// CodepointLen returns s.length, recomputing and caching it if invalidated.
func (s *StringObj) CodepointLen() int {
	n := atomic.LoadInt64(&s.runes)
	if n >= 0 {
		return int(n)
	}
	count := utf8.RuneCount(s.data)
	atomic.StoreInt64(&s.runes, int64(count))
	return count
}

func (s *StringObj) invalidate() { atomic.StoreInt64(&s.runes, -1) }

// RuneAt returns the codepoint at the given 0-based codepoint position.
func (s *StringObj) RuneAt(index int) (rune, bool) {
	if index < 0 {
		return 0, false
	}
	i := 0
	for pos := 0; pos < len(s.data); {
		r, size := utf8.DecodeRune(s.data[pos:])
		if i == index {
			return r, true
		}
		pos += size
		i++
	}
	return 0, false
}

// ByteAt returns the raw byte at a byte offset.
func (s *StringObj) ByteAt(offset int) (byte, bool) {
	if offset < 0 || offset >= len(s.data) {
		return 0, false
	}
	return s.data[offset], true
}

// SetByteAt assigns a raw byte at a byte offset, invalidating the codepoint
// cache since byte mutation can change UTF-8 boundaries.
func (s *StringObj) SetByteAt(offset int, b byte) bool {
	if offset < 0 || offset >= len(s.data) {
		return false
	}
	s.data[offset] = b
	s.invalidate()
	return true
}

// Chars materializes the array-of-runes Value `chars()` returns.
func (s *StringObj) Chars() []Value {
	out := make([]Value, 0, s.CodepointLen())
	for _, r := range string(s.data) {
		out = append(out, Rune(r))
	}
	return out
}

func AsString(v Value) *StringObj {
	if v.Tag != TagString {
		return nil
	}
	so, _ := v.Heap.(*StringObj)
	return so
}
