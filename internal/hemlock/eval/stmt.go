package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// EvalStmt executes a single statement, mutating ctx's control-flow flags.
// Callers must check ctx.Signaling() after each call and stop walking the
// enclosing block if set (spec.md §4.4).
func (ev *Evaluator) EvalStmt(s astiface.Stmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	switch n := s.(type) {
	case *astiface.Block:
		ev.evalBlock(n, scope, ctx)
	case *astiface.LetStmt:
		ev.evalLet(n, scope, ctx, false)
	case *astiface.ConstStmt:
		ev.evalConst(n, scope, ctx)
	case *astiface.ExprStmt:
		v := ev.EvalExpr(n.X, scope, ctx)
		value.Release(v)
	case *astiface.IfStmt:
		ev.evalIf(n, scope, ctx)
	case *astiface.WhileStmt:
		ev.evalWhile(n, scope, ctx)
	case *astiface.ForStmt:
		ev.evalFor(n, scope, ctx)
	case *astiface.ForInStmt:
		ev.evalForIn(n, scope, ctx)
	case *astiface.BreakStmt:
		ctx.IsBreaking = true
	case *astiface.ContinueStmt:
		ctx.IsContinuing = true
	case *astiface.ReturnStmt:
		if n.Value == nil {
			ctx.Return(value.Null())
			return
		}
		v := ev.EvalExpr(n.Value, scope, ctx)
		if ctx.IsThrowing {
			return
		}
		ctx.Return(v)
	case *astiface.ThrowStmt:
		v := ev.EvalExpr(n.Value, scope, ctx)
		if ctx.IsThrowing {
			return
		}
		ctx.Throw(v)
	case *astiface.TryStmt:
		ev.evalTry(n, scope, ctx)
	case *astiface.SwitchStmt:
		ev.evalSwitch(n, scope, ctx)
	case *astiface.DeferStmt:
		ctx.PushDefer(callframe.DeferredCall{Call: n.Call, Env: scope})
	case *astiface.DefineObjectStmt:
		ev.evalDefineObject(n)
	case *astiface.ImportStmt, *astiface.ExternFnStmt, *astiface.ExportStmt:
		// Module resolution, FFI library loading, and export bookkeeping are
		// driven by the cliutil/ffi layer before the evaluator runs the
		// program body; by the time EvalStmt sees one of these nodes in a
		// plain script (rather than via cliutil's pre-pass) there is nothing
		// further for the language core itself to do.
	default:
		ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unsupported statement node"))
	}
}

func (ev *Evaluator) evalBlock(n *astiface.Block, scope *env.Environment, ctx *callframe.ExecutionContext) {
	for _, stmt := range n.Stmts {
		ev.EvalStmt(stmt, scope, ctx)
		if ctx.Signaling() {
			return
		}
	}
}

func (ev *Evaluator) evalLet(n *astiface.LetStmt, scope *env.Environment, ctx *callframe.ExecutionContext, isConst bool) {
	v := ev.EvalExpr(n.Value, scope, ctx)
	if ctx.Signaling() {
		return
	}
	converted, err := ev.convertToType(v, n.Type, scope)
	if err != nil {
		value.Release(v)
		ev.throw(ctx, err)
		return
	}
	if err := scope.Define(n.Name, converted, isConst); err != nil {
		value.Release(converted)
		ev.throw(ctx, err)
		return
	}
	value.Release(converted)
}

func (ev *Evaluator) evalConst(n *astiface.ConstStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	let := &astiface.LetStmt{Name: n.Name, Type: n.Type, Value: n.Value}
	ev.evalLet(let, scope, ctx, true)
}

func (ev *Evaluator) evalIf(n *astiface.IfStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	cond := ev.EvalExpr(n.Cond, scope, ctx)
	if ctx.Signaling() {
		return
	}
	if cond.Truthy() {
		child := scope.NewChild()
		ev.evalBlock(n.Then, child, ctx)
		child.Release()
		return
	}
	if n.Else == nil {
		return
	}
	ev.EvalStmt(n.Else, scope, ctx)
}

func (ev *Evaluator) evalWhile(n *astiface.WhileStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	for {
		cond := ev.EvalExpr(n.Cond, scope, ctx)
		if ctx.Signaling() {
			return
		}
		if !cond.Truthy() {
			return
		}
		child := scope.NewChild()
		ev.evalBlock(n.Body, child, ctx)
		child.Release()
		if ctx.IsBreaking {
			ctx.ClearLoopSignals()
			return
		}
		if ctx.IsContinuing {
			ctx.ClearLoopSignals()
			continue
		}
		if ctx.Signaling() {
			return
		}
	}
}

func (ev *Evaluator) evalFor(n *astiface.ForStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	loopScope := scope.NewChild()
	defer loopScope.Release()

	if n.Init != nil {
		ev.EvalStmt(n.Init, loopScope, ctx)
		if ctx.Signaling() {
			return
		}
	}
	for {
		if n.Cond != nil {
			cond := ev.EvalExpr(n.Cond, loopScope, ctx)
			if ctx.Signaling() {
				return
			}
			if !cond.Truthy() {
				return
			}
		}
		iter := loopScope.NewChild()
		ev.evalBlock(n.Body, iter, ctx)
		iter.Release()
		if ctx.IsBreaking {
			ctx.ClearLoopSignals()
			return
		}
		if ctx.IsContinuing {
			ctx.ClearLoopSignals()
		} else if ctx.Signaling() {
			return
		}
		if n.Step != nil {
			v := ev.EvalExpr(n.Step, loopScope, ctx)
			value.Release(v)
			if ctx.Signaling() {
				return
			}
		}
	}
}

// evalForIn implements array (index,element) / singleton-element and object
// (field-name,field-value) iteration (spec.md §4.4).
func (ev *Evaluator) evalForIn(n *astiface.ForInStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	iterable := ev.EvalExpr(n.Iterable, scope, ctx)
	if ctx.Signaling() {
		return
	}
	switch iterable.Tag {
	case value.TagArray:
		arr := value.AsArray(iterable)
		for i, elem := range append([]value.Value(nil), arr.Values()...) {
			iter := scope.NewChild()
			if n.ValueName != "" {
				iter.Define(n.KeyName, value.I64(int64(i)), false)
				value.Retain(elem)
				iter.Define(n.ValueName, elem, false)
			} else {
				value.Retain(elem)
				iter.Define(n.KeyName, elem, false)
			}
			ev.evalBlock(n.Body, iter, ctx)
			iter.Release()
			if ctx.IsBreaking {
				ctx.ClearLoopSignals()
				return
			}
			if ctx.IsContinuing {
				ctx.ClearLoopSignals()
				continue
			}
			if ctx.Signaling() {
				return
			}
		}
	case value.TagObject:
		obj := value.AsObject(iterable)
		for _, name := range append([]string(nil), obj.Names()...) {
			fv, ok := obj.Get(name)
			if !ok {
				continue
			}
			iter := scope.NewChild()
			if n.ValueName != "" {
				iter.Define(n.KeyName, value.NewString(name), false)
				value.Retain(fv)
				iter.Define(n.ValueName, fv, false)
			} else {
				value.Retain(fv)
				iter.Define(n.KeyName, fv, false)
			}
			ev.evalBlock(n.Body, iter, ctx)
			iter.Release()
			if ctx.IsBreaking {
				ctx.ClearLoopSignals()
				return
			}
			if ctx.IsContinuing {
				ctx.ClearLoopSignals()
				continue
			}
			if ctx.Signaling() {
				return
			}
		}
	default:
		ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "for-in requires an array or object, got %s", iterable.TypeOf()))
	}
}

// evalTry implements try/catch/finally with the save-and-restore discipline
// spec.md §4.4 and §7 describe.
func (ev *Evaluator) evalTry(n *astiface.TryStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	tryScope := scope.NewChild()
	ev.evalBlock(n.Try, tryScope, ctx)
	tryScope.Release()

	if ctx.IsThrowing && n.Catch != nil {
		thrown := ctx.ClearThrow()
		catchScope := scope.NewChild()
		if n.CatchName != "" {
			catchScope.Define(n.CatchName, thrown, false)
		} else {
			value.Release(thrown)
		}
		ev.evalBlock(n.Catch, catchScope, ctx)
		catchScope.Release()
	}

	if n.Finally != nil {
		saved := ctx.Save()
		finallyScope := scope.NewChild()
		ev.evalBlock(n.Finally, finallyScope, ctx)
		finallyScope.Release()
		ctx.Restore(saved)
	}
}

// evalSwitch implements scrutinee-once evaluation with equality-rule
// matching and break-or-signal-terminated fallthrough (spec.md §4.4).
func (ev *Evaluator) evalSwitch(n *astiface.SwitchStmt, scope *env.Environment, ctx *callframe.ExecutionContext) {
	scrutinee := ev.EvalExpr(n.Scrutinee, scope, ctx)
	if ctx.Signaling() {
		return
	}

	matched := -1
	defaultIdx := -1
	for i, c := range n.Cases {
		if len(c.Values) == 0 {
			defaultIdx = i
			continue
		}
		for _, ve := range c.Values {
			v := ev.EvalExpr(ve, scope, ctx)
			if ctx.Signaling() {
				return
			}
			if value.Equal(scrutinee, v) {
				matched = i
				break
			}
		}
		if matched >= 0 {
			break
		}
	}
	if matched < 0 {
		matched = defaultIdx
	}
	if matched < 0 {
		return
	}

	caseScope := scope.NewChild()
	defer caseScope.Release()
	for i := matched; i < len(n.Cases); i++ {
		for _, stmt := range n.Cases[i].Body {
			ev.EvalStmt(stmt, caseScope, ctx)
			if ctx.IsBreaking {
				ctx.ClearLoopSignals()
				return
			}
			if ctx.Signaling() {
				return
			}
		}
	}
}

func (ev *Evaluator) evalDefineObject(n *astiface.DefineObjectStmt) {
	fields := make([]value.FieldDescriptor, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = value.FieldDescriptor{
			Name:     f.Name,
			Type:     ev.annotationType(f.Type),
			Optional: f.Optional,
			Default:  f.Default,
		}
	}
	ev.RegisterType(value.ObjectType(n.Name, fields))
}
