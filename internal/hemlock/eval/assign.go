package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// evalAssign implements plain `=` and the compound `+=`/`-=`/`*=`/`/=` forms
// (spec.md §4.4), evaluating the receiver and index exactly once for
// index/property targets.
func (ev *Evaluator) evalAssign(n *astiface.AssignExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	newVal := ev.EvalExpr(n.Value, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}

	switch target := n.Target.(type) {
	case *astiface.Ident:
		if n.Op != "" {
			cur, err := scope.Get(target.Name)
			if err != nil {
				return ev.throw(ctx, err)
			}
			newVal = ev.applyBinary(compoundOp(n.Op), cur, newVal, ctx)
			value.Release(cur)
			if ctx.Signaling() {
				return value.Null()
			}
		}
		if err := scope.Set(target.Name, newVal); err != nil {
			return ev.throw(ctx, err)
		}
		return newVal

	case *astiface.IndexExpr:
		recv := ev.EvalExpr(target.Receiver, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		idx := ev.EvalExpr(target.Index, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		if n.Op != "" {
			cur, err := indexRead(recv, idx)
			if err != nil {
				return ev.throw(ctx, err)
			}
			newVal = ev.applyBinary(compoundOp(n.Op), cur, newVal, ctx)
			value.Release(cur)
			if ctx.Signaling() {
				return value.Null()
			}
		}
		if err := indexWrite(recv, idx, newVal); err != nil {
			return ev.throw(ctx, err)
		}
		return newVal

	case *astiface.GetPropertyExpr:
		recv := ev.EvalExpr(target.Receiver, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		if n.Op != "" {
			cur, err := getProperty(recv, target.Name)
			if err != nil {
				return ev.throw(ctx, err)
			}
			newVal = ev.applyBinary(compoundOp(n.Op), cur, newVal, ctx)
			value.Release(cur)
			if ctx.Signaling() {
				return value.Null()
			}
		}
		if recv.Tag != value.TagObject {
			return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "cannot set property on %s", recv.TypeOf()))
		}
		value.AsObject(recv).Set(target.Name, newVal)
		return newVal

	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "invalid assignment target"))
	}
}

func compoundOp(op string) string {
	switch op {
	case "+=":
		return "+"
	case "-=":
		return "-"
	case "*=":
		return "*"
	case "/=":
		return "/"
	default:
		return op
	}
}

// evalIncDec implements ++x/--x/x++/x-- on identifiers, array elements, and
// object fields (spec.md §4.4): the operand must be numeric and its rank is
// preserved.
func (ev *Evaluator) evalIncDec(n *astiface.IncDecExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	// i8 has the lowest rank, so promotion keeps the operand's own rank.
	delta := value.I8(1)
	op := "+"
	if n.Op == "--" {
		op = "-"
	}

	readTarget := func() (value.Value, error) {
		switch t := n.Target.(type) {
		case *astiface.Ident:
			return scope.Get(t.Name)
		case *astiface.IndexExpr:
			recv := ev.EvalExpr(t.Receiver, scope, ctx)
			idx := ev.EvalExpr(t.Index, scope, ctx)
			if ctx.Signaling() {
				return value.Value{}, nil
			}
			return indexRead(recv, idx)
		case *astiface.GetPropertyExpr:
			recv := ev.EvalExpr(t.Receiver, scope, ctx)
			if ctx.Signaling() {
				return value.Value{}, nil
			}
			return getProperty(recv, t.Name)
		default:
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "invalid increment/decrement target")
		}
	}

	writeTarget := func(v value.Value) error {
		switch t := n.Target.(type) {
		case *astiface.Ident:
			return scope.Set(t.Name, v)
		case *astiface.IndexExpr:
			recv := ev.EvalExpr(t.Receiver, scope, ctx)
			idx := ev.EvalExpr(t.Index, scope, ctx)
			return indexWrite(recv, idx, v)
		case *astiface.GetPropertyExpr:
			recv := ev.EvalExpr(t.Receiver, scope, ctx)
			if recv.Tag != value.TagObject {
				return diagnostics.New(diagnostics.CategoryCoercion, "cannot set property on %s", recv.TypeOf())
			}
			value.AsObject(recv).Set(t.Name, v)
			return nil
		default:
			return diagnostics.New(diagnostics.CategoryCoercion, "invalid increment/decrement target")
		}
	}

	cur, err := readTarget()
	if err != nil {
		return ev.throw(ctx, err)
	}
	if !cur.Tag.IsNumeric() {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "increment/decrement requires a numeric operand, got %s", cur.TypeOf()))
	}
	updated := ev.applyBinary(op, cur, delta, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	if err := writeTarget(updated); err != nil {
		return ev.throw(ctx, err)
	}
	if n.Postfix {
		return cur
	}
	value.Retain(updated)
	return updated
}
