package eval

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestSpawnJoinRunsAsyncFunction(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:    "work",
		IsAsync: true,
		Params:  []astiface.ParamDecl{{Name: "n", Type: &astiface.TypeAnnotation{Name: "i32"}}},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.BinaryExpr{Op: "*", Left: &astiface.Ident{Name: "n"}, Right: &astiface.NumberLit{IsInt: true, Int: 2}}},
		}},
	}, scope, ctx)
	scope.Define("work", fnVal, true)

	task := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "spawn"},
		Args:   []astiface.Expr{&astiface.Ident{Name: "work"}, &astiface.NumberLit{IsInt: true, Int: 21}},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("spawn should not throw: %v", ctx.ThrownValue)
	}
	if task.Tag != value.TagTask {
		t.Fatalf("spawn() should return a task, got %s", task.TypeOf())
	}

	scope.Define("t", task, false)
	result := ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "join"},
		Args:   []astiface.Expr{&astiface.Ident{Name: "t"}},
	}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("join should not throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 42 {
		t.Errorf("join(spawn(work,21)) = %d, want 42", result.AsI64())
	}
}

func TestSpawnNonAsyncFunctionThrows(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{Name: "sync_fn", Body: &astiface.Block{}}, scope, ctx)
	scope.Define("sync_fn", fnVal, true)

	ev.EvalExpr(&astiface.CallExpr{
		Callee: &astiface.Ident{Name: "spawn"},
		Args:   []astiface.Expr{&astiface.Ident{Name: "sync_fn"}},
	}, scope, ctx)
	if !ctx.IsThrowing {
		t.Fatal("spawn on a non-async function should throw")
	}
}

func TestAwaitJoinsTask(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:    "work",
		IsAsync: true,
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.NumberLit{IsInt: true, Int: 7}},
		}},
	}, scope, ctx)
	scope.Define("work", fnVal, true)

	awaitExpr := &astiface.AwaitExpr{Operand: &astiface.CallExpr{Callee: &astiface.Ident{Name: "spawn"}, Args: []astiface.Expr{&astiface.Ident{Name: "work"}}}}
	result := ev.EvalExpr(awaitExpr, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("await should not throw: %v", ctx.ThrownValue)
	}
	if result.AsI64() != 7 {
		t.Errorf("await spawn(work) = %d, want 7", result.AsI64())
	}
}

func TestDetachedTaskCannotBeJoined(t *testing.T) {
	ev, scope, ctx := newTestScope()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name:    "work",
		IsAsync: true,
		Body:    &astiface.Block{Stmts: []astiface.Stmt{&astiface.ReturnStmt{Value: &astiface.NullLit{}}}},
	}, scope, ctx)
	scope.Define("work", fnVal, true)

	task := ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "spawn"}, Args: []astiface.Expr{&astiface.Ident{Name: "work"}}}, scope, ctx)
	scope.Define("t", task, false)

	ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "detach"}, Args: []astiface.Expr{&astiface.Ident{Name: "t"}}}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("detach should not throw: %v", ctx.ThrownValue)
	}

	freshCtx := callframe.New()
	ev.EvalExpr(&astiface.CallExpr{Callee: &astiface.Ident{Name: "join"}, Args: []astiface.Expr{&astiface.Ident{Name: "t"}}}, scope, freshCtx)
	if !freshCtx.IsThrowing {
		t.Fatal("join on a detached task should throw")
	}
}
