package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/concurrency"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// spawnTask implements `spawn(fn, args…)` (spec.md §4.8): fn must be async;
// the task's entry point binds typed parameters in a child of fn's closure,
// runs the body, and records the result or exception before completing.
func (ev *Evaluator) spawnTask(fn *value.FunctionObj, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if !fn.IsAsync {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "spawn requires an async function"))
	}
	if len(args) != len(fn.Params) {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "function %q expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)))
	}
	for _, a := range args {
		value.Retain(a)
	}

	entry := func(taskCtx *callframe.ExecutionContext) value.Value {
		closureEnv, _ := fn.Closure.(*env.Environment)
		callEnv := closureEnv.NewChild()
		defer callEnv.Release()

		for i, p := range fn.Params {
			converted, err := ev.convertToTypeDesc(args[i], p.Type, callEnv)
			if err != nil {
				value.Release(args[i])
				ev.throw(taskCtx, err)
				return value.Null()
			}
			callEnv.Define(p.Name, converted, false)
			value.Release(args[i])
		}

		body, _ := fn.Body.(*astiface.Block)
		if body != nil {
			ev.evalBlock(body, callEnv, taskCtx)
		}
		if taskCtx.IsReturning {
			v := taskCtx.ReturnValue
			taskCtx.IsReturning = false
			taskCtx.ReturnValue = value.Value{}
			return v
		}
		return value.Null()
	}

	return concurrency.Spawn(entry, ev.Budget)
}

func (ev *Evaluator) joinTask(v value.Value, ctx *callframe.ExecutionContext) value.Value {
	task := concurrency.AsTask(v)
	if task == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "join/await requires a task value, got %s", v.TypeOf()))
	}
	result, err := task.Join()
	if err != nil {
		return ev.throw(ctx, err)
	}
	return result
}

func (ev *Evaluator) detachTask(v value.Value, ctx *callframe.ExecutionContext) value.Value {
	task := concurrency.AsTask(v)
	if task == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "detach requires a task value, got %s", v.TypeOf()))
	}
	task.Detach()
	return value.Null()
}
