package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/builtin"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/coerce"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// EvalExpr evaluates a single expression node, returning its Value. Callers
// must check ctx.IsThrowing (or any other signal) before trusting the
// result: a thrown exception still returns value.Null() by convention.
func (ev *Evaluator) EvalExpr(e astiface.Expr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	switch n := e.(type) {
	case *astiface.NumberLit:
		if n.IsInt {
			if n.Int >= -(1<<31) && n.Int <= (1<<31)-1 {
				return value.I32(int32(n.Int))
			}
			return value.I64(n.Int)
		}
		return value.F64(n.Float)
	case *astiface.BoolLit:
		return value.Bool(n.Value)
	case *astiface.NullLit:
		return value.Null()
	case *astiface.StringLit:
		return value.NewString(n.Value)
	case *astiface.RuneLit:
		return value.Rune(n.Value)
	case *astiface.Ident:
		v, err := scope.Get(n.Name)
		if err != nil {
			return ev.throw(ctx, err)
		}
		return v
	case *astiface.UnaryExpr:
		return ev.evalUnary(n, scope, ctx)
	case *astiface.BinaryExpr:
		return ev.evalBinary(n, scope, ctx)
	case *astiface.TernaryExpr:
		return ev.evalTernary(n, scope, ctx)
	case *astiface.AssignExpr:
		return ev.evalAssign(n, scope, ctx)
	case *astiface.IndexExpr:
		return ev.evalIndex(n, scope, ctx)
	case *astiface.GetPropertyExpr:
		return ev.evalGetProperty(n, scope, ctx)
	case *astiface.CallExpr:
		return ev.evalCall(n, scope, ctx)
	case *astiface.FunctionLit:
		return ev.evalFunctionLit(n, scope)
	case *astiface.ArrayLit:
		return ev.evalArrayLit(n, scope, ctx)
	case *astiface.ObjectLit:
		return ev.evalObjectLit(n, scope, ctx)
	case *astiface.IncDecExpr:
		return ev.evalIncDec(n, scope, ctx)
	case *astiface.AwaitExpr:
		return ev.evalAwait(n, scope, ctx)
	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unsupported expression node"))
	}
}

func (ev *Evaluator) evalUnary(n *astiface.UnaryExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	operand := ev.EvalExpr(n.Operand, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	switch n.Op {
	case "!":
		return value.Bool(!operand.Truthy())
	case "-":
		if !operand.Tag.IsNumeric() {
			return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unary '-' requires a numeric operand, got %s", operand.TypeOf()))
		}
		zero := value.I64(0)
		r, err := coerce.Arith("-", zero, operand)
		if err != nil {
			return ev.throw(ctx, err)
		}
		return r
	case "~":
		if !operand.Tag.IsInteger() {
			return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unary '~' requires an integer operand, got %s", operand.TypeOf()))
		}
		return value.I64(^operand.AsI64())
	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unsupported unary operator %q", n.Op))
	}
}

func (ev *Evaluator) evalBinary(n *astiface.BinaryExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	if n.Op == "&&" {
		l := ev.EvalExpr(n.Left, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		if !l.Truthy() {
			return value.Bool(false)
		}
		r := ev.EvalExpr(n.Right, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		return value.Bool(r.Truthy())
	}
	if n.Op == "||" {
		l := ev.EvalExpr(n.Left, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		if l.Truthy() {
			return value.Bool(true)
		}
		r := ev.EvalExpr(n.Right, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		return value.Bool(r.Truthy())
	}

	l := ev.EvalExpr(n.Left, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	r := ev.EvalExpr(n.Right, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	return ev.applyBinary(n.Op, l, r, ctx)
}

// applyBinary implements spec.md §4.4's equality/magnitude rules plus `+`'s
// implicit string concatenation (either operand a string stringifies the
// other, per §8 scenario 6's `"caught:" + e`).
func (ev *Evaluator) applyBinary(op string, l, r value.Value, ctx *callframe.ExecutionContext) value.Value {
	switch op {
	case "==":
		return value.Bool(value.Equal(l, r))
	case "!=":
		return value.Bool(!value.Equal(l, r))
	case "<", "<=", ">", ">=":
		ok, err := coerce.Compare(op, l, r)
		if err != nil {
			return ev.throw(ctx, err)
		}
		return value.Bool(ok)
	case "+":
		if l.Tag == value.TagString || r.Tag == value.TagString {
			return value.NewString(builtin.Display(l) + builtin.Display(r))
		}
		fallthrough
	case "-", "*", "/", "%":
		v, err := coerce.Arith(op, l, r)
		if err != nil {
			return ev.throw(ctx, err)
		}
		return v
	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "unsupported binary operator %q", op))
	}
}

func (ev *Evaluator) evalTernary(n *astiface.TernaryExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	cond := ev.EvalExpr(n.Cond, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	if cond.Truthy() {
		return ev.EvalExpr(n.Then, scope, ctx)
	}
	return ev.EvalExpr(n.Else, scope, ctx)
}

func (ev *Evaluator) evalArrayLit(n *astiface.ArrayLit, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	elems := make([]value.Value, 0, len(n.Elements))
	for _, e := range n.Elements {
		v := ev.EvalExpr(e, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		elems = append(elems, v)
	}
	arr := value.NewArray(elems)
	for _, v := range elems {
		value.Release(v)
	}
	return arr
}

func (ev *Evaluator) evalObjectLit(n *astiface.ObjectLit, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	obj := value.NewObject()
	oo := value.AsObject(obj)
	for _, f := range n.Fields {
		v := ev.EvalExpr(f.Value, scope, ctx)
		if ctx.Signaling() {
			return value.Null()
		}
		oo.Set(f.Name, v)
		value.Release(v)
	}
	return obj
}

func (ev *Evaluator) evalFunctionLit(n *astiface.FunctionLit, scope *env.Environment) value.Value {
	params := make([]value.Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = value.Param{Name: p.Name, Type: ev.annotationType(p.Type)}
	}
	return value.NewFunction(n.Name, params, ev.annotationType(n.Return), n.IsAsync, n.Body, scope)
}

func (ev *Evaluator) annotationType(ann *astiface.TypeAnnotation) *value.TypeDescriptor {
	if ann == nil {
		return nil
	}
	if td := primitiveType(ann.Name); td != nil {
		return td
	}
	return ev.LookupType(ann.Name)
}

func (ev *Evaluator) evalAwait(n *astiface.AwaitExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	v := ev.EvalExpr(n.Operand, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	return ev.joinTask(v, ctx)
}
