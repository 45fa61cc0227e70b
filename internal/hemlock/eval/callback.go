package eval

import (
	"fmt"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// InvokeAsCallback runs a Hemlock function synchronously against
// already-marshalled C-sourced arguments: a fresh ExecutionContext, a child
// of fn's captured closure environment, per-parameter type coercion, and
// the function body (spec.md §4.9). Unlike callFunction, there is no caller
// frame to push/pop (the foreign caller has no Hemlock stack) and any
// thrown exception is returned as a Go error for the ffi trampoline to log
// and discard rather than propagate, since exceptions cannot cross into C.
func (ev *Evaluator) InvokeAsCallback(fn value.Value, args []value.Value) (value.Value, error) {
	if fn.Tag != value.TagFunction {
		return value.Value{}, fmt.Errorf("ffi callback target is not a Hemlock function")
	}
	f := value.AsFunction(fn)
	if len(args) != len(f.Params) {
		return value.Value{}, fmt.Errorf("ffi callback %q expects %d argument(s), got %d", f.Name, len(f.Params), len(args))
	}

	closureEnv, _ := f.Closure.(*env.Environment)
	callEnv := closureEnv.NewChild()
	defer callEnv.Release()

	ctx := callframe.New()
	for i, p := range f.Params {
		converted, err := ev.convertToTypeDesc(args[i], p.Type, callEnv)
		if err != nil {
			value.Release(args[i])
			return value.Value{}, err
		}
		callEnv.Define(p.Name, converted, false)
		value.Release(args[i])
	}

	mark := ctx.Mark()
	body, _ := f.Body.(*astiface.Block)
	if body != nil {
		ev.evalBlock(body, callEnv, ctx)
	}
	ev.runDefers(mark, ctx)

	if ctx.IsThrowing {
		return value.Value{}, &callbackException{thrown: ctx.ThrownValue}
	}
	if ctx.IsReturning {
		return ctx.ReturnValue, nil
	}
	return value.Null(), nil
}

type callbackException struct {
	thrown value.Value
}

func (e *callbackException) Error() string {
	return fmt.Sprintf("uncaught exception in ffi callback: %s", e.thrown.TypeOf())
}
