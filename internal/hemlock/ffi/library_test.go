package ffi

import "testing"

func TestLibraryPathReflectsOpenedTarget(t *testing.T) {
	lib := &Library{path: "/usr/lib/libm.so", symbols: make(map[string]uintptr)}
	if lib.Path() != "/usr/lib/libm.so" {
		t.Errorf("Path() = %q, want \"/usr/lib/libm.so\"", lib.Path())
	}
}

func TestLibrarySymbolCachesLookup(t *testing.T) {
	lib := &Library{path: "fake", symbols: map[string]uintptr{"already_resolved": 0xdead}}
	addr, err := lib.Symbol("already_resolved")
	if err != nil {
		t.Fatalf("unexpected error for a pre-cached symbol: %v", err)
	}
	if addr != 0xdead {
		t.Errorf("Symbol(already_resolved) = %#x, want 0xdead", addr)
	}
}
