package eval

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestTypeofBuiltin(t *testing.T) {
	ev := New()
	root := ev.NewGlobalEnv(nil)
	ctx := callframe.New()
	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "typeof"},
		Args:   []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 1}},
	}, root, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if value.AsString(result).Data() != "i32" {
		t.Errorf("typeof(1) = %q, want \"i32\"", value.AsString(result).Data())
	}
}

func TestSizeofKnownAndArgsGlobal(t *testing.T) {
	ev := New()
	root := ev.NewGlobalEnv([]string{"a", "b"})
	ctx := callframe.New()
	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "sizeof"},
		Args:   []astiface.Expr{&astiface.StringLit{Value: "i64"}},
	}, root, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 8 {
		t.Errorf("sizeof(\"i64\") = %d, want 8", result.AsI64())
	}

	argsVal, err := root.Get("args")
	if err != nil {
		t.Fatalf("args should be defined in the global env: %v", err)
	}
	if len(value.AsArray(argsVal).Values()) != 2 {
		t.Errorf("args length = %d, want 2", len(value.AsArray(argsVal).Values()))
	}
}

func TestGetenvSetenvRoundTrip(t *testing.T) {
	ev := New()
	root := ev.NewGlobalEnv(nil)
	ctx := callframe.New()

	ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "setenv"},
		Args:   []astiface.Expr{&astiface.StringLit{Value: "HEMLOCK_TEST_VAR"}, &astiface.StringLit{Value: "hello"}},
	}, root, ctx)
	if ctx.IsThrowing {
		t.Fatalf("setenv should not throw: %v", ctx.ThrownValue)
	}

	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "getenv"},
		Args:   []astiface.Expr{&astiface.StringLit{Value: "HEMLOCK_TEST_VAR"}},
	}, root, ctx)
	if value.AsString(result).Data() != "hello" {
		t.Errorf("getenv round-trip = %q, want \"hello\"", value.AsString(result).Data())
	}
}

func TestFreeRestrictedToFreeableTypes(t *testing.T) {
	ev := New()
	root := ev.NewGlobalEnv(nil)
	ctx := callframe.New()
	ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "free"},
		Args:   []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 1}},
	}, root, ctx)
	if !ctx.IsThrowing {
		t.Fatal("free() on a non-freeable type (i32) should throw")
	}
}

func TestChannelBuiltinCreatesChannel(t *testing.T) {
	ev := New()
	root := ev.NewGlobalEnv(nil)
	ctx := callframe.New()
	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "channel"},
		Args:   []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 2}},
	}, root, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	if result.Tag != value.TagChannel {
		t.Errorf("channel(2) tag = %v, want channel", result.Tag)
	}
}
