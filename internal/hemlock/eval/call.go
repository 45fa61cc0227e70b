package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/builtin"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// evalCall implements the full call-expression protocol of spec.md §4.4:
// method dispatch for built-in handle types, field-callable dispatch with
// self-binding for object methods, and the typed Hemlock function call
// protocol (arity check, parameter coercion, defer unwinding, return-type
// coercion, stack-frame push/pop).
func (ev *Evaluator) evalCall(n *astiface.CallExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	if prop, ok := n.Callee.(*astiface.GetPropertyExpr); ok {
		recv := ev.EvalExpr(prop.Receiver, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		if isBuiltinMethodReceiver(recv, prop.Name) {
			args, ok := ev.evalArgs(n.Args, scope, ctx)
			if !ok {
				return value.Null()
			}
			result, err := builtin.Dispatch(recv, prop.Name, args)
			releaseAll(args)
			value.Release(recv)
			if err != nil {
				return ev.throw(ctx, err)
			}
			return result
		}
		if recv.Tag != value.TagObject {
			value.Release(recv)
			return ev.throw(ctx, diagnostics.New(diagnostics.CategoryMethodNotFound, "%s has no method %q", recv.TypeOf(), prop.Name))
		}
		field, err := getProperty(recv, prop.Name)
		if err != nil {
			value.Release(recv)
			return ev.throw(ctx, err)
		}
		args, ok := ev.evalArgs(n.Args, scope, ctx)
		if !ok {
			value.Release(recv)
			value.Release(field)
			return value.Null()
		}
		result := ev.invoke(field, args, recv, ctx)
		value.Release(field)
		value.Release(recv)
		releaseAll(args)
		return result
	}

	callee := ev.EvalExpr(n.Callee, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	args, ok := ev.evalArgs(n.Args, scope, ctx)
	if !ok {
		value.Release(callee)
		return value.Null()
	}
	result := ev.invoke(callee, args, value.Value{}, ctx)
	value.Release(callee)
	releaseAll(args)
	return result
}

// isBuiltinMethodReceiver reports whether a property-access call routes to
// builtin.Dispatch rather than field-callable-with-self-binding: every
// non-object handle type always does, and objects do only for the small set
// of built-in method names they expose (spec.md §4.4, §4.7).
func isBuiltinMethodReceiver(recv value.Value, method string) bool {
	switch recv.Tag {
	case value.TagFile, value.TagArray, value.TagString, value.TagChannel, value.TagBuffer:
		return true
	case value.TagObject:
		return method == "serialize"
	default:
		return false
	}
}

func (ev *Evaluator) evalArgs(exprs []astiface.Expr, scope *env.Environment, ctx *callframe.ExecutionContext) ([]value.Value, bool) {
	args := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		v := ev.EvalExpr(e, scope, ctx)
		if ctx.Signaling() {
			releaseAll(args)
			return nil, false
		}
		args = append(args, v)
	}
	return args, true
}

func releaseAll(vs []value.Value) {
	for _, v := range vs {
		value.Release(v)
	}
}

// invoke dispatches to a Hemlock function, builtin-function, or ffi-function
// callee (spec.md §4.4). self is the receiver when this call originated from
// a property-access expression (spec.md invariant 5), or the zero Value
// otherwise.
func (ev *Evaluator) invoke(callee value.Value, args []value.Value, self value.Value, ctx *callframe.ExecutionContext) value.Value {
	switch callee.Tag {
	case value.TagBuiltinFunction:
		bf := asBuiltinFunction(callee)
		return bf.Fn(ev, args, ctx)
	case value.TagFunction:
		return ev.callFunction(value.AsFunction(callee), args, self, ctx)
	case value.TagFFIFunction:
		return ev.callFFI(callee, args, ctx)
	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryMethodNotFound, "value of type %s is not callable", callee.TypeOf()))
	}
}

// callFunction implements the Hemlock-function call protocol (spec.md
// §4.4, §4.5, §4.6): arity check, a new environment parented to the
// closure, self-binding, per-parameter type coercion, stack-frame push, body
// execution, LIFO defer unwinding, return-type coercion, and frame pop
// (skipped while an exception is in flight so it survives into the
// eventual stack trace).
func (ev *Evaluator) callFunction(fn *value.FunctionObj, args []value.Value, self value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != len(fn.Params) {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "function %q expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)))
	}

	closureEnv, _ := fn.Closure.(*env.Environment)
	callEnv := closureEnv.NewChild()
	defer callEnv.Release()

	if self.Tag == value.TagObject {
		callEnv.Define("self", self, false)
	}

	for i, p := range fn.Params {
		converted, err := ev.convertToTypeDesc(args[i], p.Type, callEnv)
		if err != nil {
			return ev.throw(ctx, err)
		}
		callEnv.Define(p.Name, converted, false)
	}

	frameName := fn.Name
	if frameName == "" {
		frameName = "<anonymous>"
	}
	ctx.PushFrame(callframe.Frame{Function: frameName})
	mark := ctx.Mark()

	body, _ := fn.Body.(*astiface.Block)
	if body != nil {
		ev.evalBlock(body, callEnv, ctx)
	}

	ev.runDefers(mark, ctx)

	var result value.Value
	if ctx.IsReturning {
		result = ctx.ReturnValue
		ctx.IsReturning = false
		ctx.ReturnValue = value.Value{}
	} else {
		result = value.Null()
	}

	if !ctx.IsThrowing {
		ctx.PopFrame()
	}

	if !ctx.IsThrowing && fn.ReturnType != nil {
		converted, err := ev.convertToTypeDesc(result, fn.ReturnType, callEnv)
		if err != nil {
			value.Release(result)
			return ev.throw(ctx, err)
		}
		return converted
	}
	return result
}

// runDefers executes every defer entry pushed since mark, in LIFO order,
// with the throw flag temporarily cleared so a deferred call may itself
// throw; its exception (if any) replaces the one it ran under (spec.md §4.5).
func (ev *Evaluator) runDefers(mark callframe.DeferMark, ctx *callframe.ExecutionContext) {
	pending := ctx.Unwind(mark)
	if len(pending) == 0 {
		return
	}
	savedThrowing, savedThrown := ctx.IsThrowing, ctx.ThrownValue
	ctx.IsThrowing, ctx.ThrownValue = false, value.Value{}

	for _, d := range pending {
		call, _ := d.Call.(*astiface.CallExpr)
		denv, _ := d.Env.(*env.Environment)
		if call != nil && denv != nil {
			v := ev.evalCall(call, denv, ctx)
			value.Release(v)
		}
		d.Env.Release()
		if ctx.IsThrowing {
			// This defer's own exception overrides whatever was pending.
			savedThrowing, savedThrown = true, ctx.ThrownValue
			ctx.IsThrowing, ctx.ThrownValue = false, value.Value{}
		}
	}

	ctx.IsThrowing, ctx.ThrownValue = savedThrowing, savedThrown
}

