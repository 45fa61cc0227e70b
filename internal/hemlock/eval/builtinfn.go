package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// NativeFn is a core built-in implemented directly in Go rather than
// Hemlock (print, typeof, spawn, join, detach, channel, free, panic, sizeof,
// getenv/setenv/unsetenv, sleep — spec.md §4.1, §4.6, §4.8, §4.9; everything
// else the standard library offers is an out-of-scope collaborator per
// spec.md §1). It receives already-evaluated, retained arguments and the
// calling task's ExecutionContext so it may itself throw.
type NativeFn func(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value

// BuiltinFunctionObj wraps a NativeFn so it can travel through the value
// system like any other callable (TagBuiltinFunction). It owns no
// heap-reachable children.
type BuiltinFunctionObj struct {
	hdr  value.Header
	Name string
	Fn   NativeFn
}

func newBuiltinFunction(name string, fn NativeFn) value.Value {
	b := &BuiltinFunctionObj{hdr: *value.NewHeader(), Name: name, Fn: fn}
	return value.FromHeap(value.TagBuiltinFunction, b)
}

func (b *BuiltinFunctionObj) Header() *value.Header { return &b.hdr }
func (b *BuiltinFunctionObj) Kind() value.Kind       { return 200 } // outside value's own Kind range; never switched on.
func (b *BuiltinFunctionObj) ReleaseChildren()       {}

func asBuiltinFunction(v value.Value) *BuiltinFunctionObj {
	if v.Tag != value.TagBuiltinFunction {
		return nil
	}
	bo, _ := v.Heap.(*BuiltinFunctionObj)
	return bo
}
