package eval

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestInvokeAsCallbackReturnsResult(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:   "double",
		Params: []astiface.ParamDecl{{Name: "n", Type: &astiface.TypeAnnotation{Name: "i32"}}},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.BinaryExpr{Op: "*", Left: &astiface.Ident{Name: "n"}, Right: &astiface.NumberLit{IsInt: true, Int: 2}}},
		}},
	}, scope, ctx)

	result, err := ev.InvokeAsCallback(fnVal, []value.Value{value.I32(21)})
	if err != nil {
		t.Fatalf("InvokeAsCallback error: %v", err)
	}
	if result.AsI64() != 42 {
		t.Errorf("InvokeAsCallback(double, 21) = %d, want 42", result.AsI64())
	}
}

func TestInvokeAsCallbackPropagatesException(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name: "fails",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ThrowStmt{Value: &astiface.StringLit{Value: "boom"}},
		}},
	}, scope, ctx)

	_, err := ev.InvokeAsCallback(fnVal, nil)
	if err == nil {
		t.Fatal("a callback that throws should surface a Go error")
	}
}

func TestInvokeAsCallbackArityMismatch(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:   "one_arg",
		Params: []astiface.ParamDecl{{Name: "a"}},
		Body:   &astiface.Block{},
	}, scope, ctx)

	_, err := ev.InvokeAsCallback(fnVal, nil)
	if err == nil {
		t.Fatal("arity mismatch should error")
	}
}

func TestInvokeAsCallbackRejectsNonFunction(t *testing.T) {
	ev, _, _ := newTestScope()
	_, err := ev.InvokeAsCallback(value.I32(1), nil)
	if err == nil {
		t.Fatal("invoking a non-function value as a callback should error")
	}
}

func TestCallFFIWithNoRuntimeInstalledThrows(t *testing.T) {
	ev, _, ctx := newTestScope()
	result := ev.callFFI(value.Null(), nil, ctx)
	if !ctx.IsThrowing {
		t.Fatal("calling an FFI function with no FFI runtime installed should throw")
	}
	if result.Tag != value.TagNull {
		t.Errorf("callFFI on throw should return null, got %s", result.TypeOf())
	}
}

type fakeFFI struct{}

func (fakeFFI) Call(fn value.Value, args []value.Value) (value.Value, error) {
	return value.I32(99), nil
}

func TestCallFFIDelegatesToInstalledRuntime(t *testing.T) {
	ev, _, ctx := newTestScope()
	ev.FFI = fakeFFI{}
	result := ev.callFFI(value.Null(), nil, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 99 {
		t.Errorf("callFFI result = %d, want 99", result.AsI64())
	}
}
