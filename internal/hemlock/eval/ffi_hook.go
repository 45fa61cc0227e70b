package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// FFIInvoker is implemented by the ffi package's runtime. eval depends only
// on this interface (rather than importing ffi directly) because the ffi
// package's callback trampoline must call back into eval to run Hemlock
// function bodies — a direct eval->ffi->eval import cycle.
type FFIInvoker interface {
	Call(fn value.Value, args []value.Value) (value.Value, error)
}

func (ev *Evaluator) callFFI(fn value.Value, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if ev.FFI == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "no FFI runtime installed"))
	}
	result, err := ev.FFI.Call(fn, args)
	if err != nil {
		return ev.throw(ctx, err)
	}
	return result
}
