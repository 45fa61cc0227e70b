package eval

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestCallUserFunction(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name: "add",
		Params: []astiface.ParamDecl{
			{Name: "a", Type: &astiface.TypeAnnotation{Name: "i32"}},
			{Name: "b", Type: &astiface.TypeAnnotation{Name: "i32"}},
		},
		Return: &astiface.TypeAnnotation{Name: "i32"},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.BinaryExpr{
				Op: "+", Left: &astiface.Ident{Name: "a"}, Right: &astiface.Ident{Name: "b"},
			}},
		}},
	}, scope, ctx)
	scope.Define("add", fnVal, true)

	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "add"},
		Args:   []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 2}, &astiface.NumberLit{IsInt: true, Int: 3}},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 5 {
		t.Errorf("add(2,3) = %d, want 5", result.AsI64())
	}
}

func TestCallArityMismatchThrows(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:   "one_arg",
		Params: []astiface.ParamDecl{{Name: "a"}},
		Body:   &astiface.Block{},
	}, scope, ctx)
	scope.Define("one_arg", fnVal, true)

	ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "one_arg"}}, scope, ctx)
	if !ctx.IsThrowing {
		t.Fatal("calling with the wrong number of arguments should throw")
	}
}

func TestCallNonCallableThrows(t *testing.T) {
	ev, scope, ctx := newTestScope()
	scope.Define("x", value.I32(1), false)
	ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "x"}}, scope, ctx)
	if !ctx.IsThrowing {
		t.Fatal("calling a non-callable value should throw")
	}
}

func TestDeferRunsOnNormalReturn(t *testing.T) {
	ev, scope, ctx := newTestScope()
	scope.Define("log", value.NewString(""), false)

	// fn f() { defer log = log + "a"; log = log + "b"; }
	logAppend := func(suffix string) astiface.Stmt {
		return &astiface.ExprStmt{X: &astiface.AssignExpr{
			Op: "+=", Target: &astiface.Ident{Name: "log"}, Value: &astiface.StringLit{Value: suffix},
		}}
	}
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name: "f",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.DeferStmt{Call: &astiface.CallExpr{Callee: &astiface.Ident{Name: "append_a"}}},
			logAppend("b"),
		}},
	}, scope, ctx)
	scope.Define("f", fnVal, true)

	appendAFn := ev.EvalExpr(&astiface.FunctionLit{
		Name: "append_a",
		Body: &astiface.Block{Stmts: []astiface.Stmt{logAppend("a")}},
	}, scope, ctx)
	scope.Define("append_a", appendAFn, true)

	ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "f"}}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	v := ev.EvalExpr(&astiface.Ident{Name: "log"}, scope, ctx)
	if value.AsString(v).Data() != "ba" {
		t.Errorf("log = %q, want \"ba\" (defer runs after the body, in LIFO order)", value.AsString(v).Data())
	}
}

func TestObjectMethodSelfBinding(t *testing.T) {
	ev, scope, ctx := newTestScope()
	// method(self) { return self.x; }
	method := ev.EvalExpr(&astiface.FunctionLit{
		Name: "get_x",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.GetPropertyExpr{Receiver: &astiface.Ident{Name: "self"}, Name: "x"}},
		}},
	}, scope, ctx)

	obj := ev.EvalExpr(&astiface.ObjectLit{Fields: []astiface.ObjectFieldLit{
		{Name: "x", Value: &astiface.NumberLit{IsInt: true, Int: 42}},
	}}, scope, ctx)
	value.AsObject(obj).Set("get_x", method)
	scope.Define("obj", obj, false)

	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.GetPropertyExpr{Receiver: &astiface.Ident{Name: "obj"}, Name: "get_x"},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 42 {
		t.Errorf("obj.get_x() = %d, want 42", result.AsI64())
	}
}

func TestBuiltinMethodOnFreshLiteralReceiverSurvivesRelease(t *testing.T) {
	ev, scope, ctx := newTestScope()
	// print([3,2,1].reverse()[0]) — the array literal is evaluated straight
	// into the receiver position with no compensating retain, so evalCall's
	// post-dispatch release of the receiver must not be the only live ref.
	reversed := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.GetPropertyExpr{
			Receiver: &astiface.ArrayLit{Elements: []astiface.Expr{
				&astiface.NumberLit{IsInt: true, Int: 3},
				&astiface.NumberLit{IsInt: true, Int: 2},
				&astiface.NumberLit{IsInt: true, Int: 1},
			}},
			Name: "reverse",
		},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	scope.Define("reversed", reversed, false)

	first := ev.EvalExpr(&astiface.IndexExpr{
		Receiver: &astiface.Ident{Name: "reversed"},
		Index:    &astiface.NumberLit{IsInt: true, Int: 0},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("indexing the reversed array should not throw: %v", ctx.ThrownValue)
	}
	if first.AsI64() != 1 {
		t.Errorf("[3,2,1].reverse()[0] = %d, want 1", first.AsI64())
	}
}

func TestBuiltinMethodDispatchOnArray(t *testing.T) {
	ev, scope, ctx := newTestScope()
	scope.Define("arr", value.NewArray([]value.Value{value.I32(1), value.I32(2)}), false)
	ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.GetPropertyExpr{Receiver: &astiface.Ident{Name: "arr"}, Name: "push"},
		Args:   []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 3}},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	arrVal, _ := scope.Get("arr")
	if len(value.AsArray(arrVal).Values()) != 3 {
		t.Errorf("after push, arr length = %d, want 3", len(value.AsArray(arrVal).Values()))
	}
}
