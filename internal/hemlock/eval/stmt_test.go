package eval

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestLetAndGet(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "x", Value: &astiface.NumberLit{IsInt: true, Int: 10}}, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	v := ev.EvalExpr(&astiface.Ident{Name: "x"}, scope, ctx)
	if v.AsI64() != 10 {
		t.Errorf("x = %d, want 10", v.AsI64())
	}
}

func TestConstReassignThrows(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.ConstStmt{Name: "c", Value: &astiface.NumberLit{IsInt: true, Int: 1}}, scope, ctx)
	ev.EvalStmt(&astiface.ExprStmt{X: &astiface.AssignExpr{
		Target: &astiface.Ident{Name: "c"},
		Value:  &astiface.NumberLit{IsInt: true, Int: 2},
	}}, scope, ctx)
	if !ctx.IsThrowing {
		t.Fatal("reassigning a const should throw")
	}
}

func TestIfElse(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "result", Value: &astiface.NumberLit{IsInt: true, Int: 0}}, scope, ctx)
	ifStmt := &astiface.IfStmt{
		Cond: &astiface.BoolLit{Value: false},
		Then: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{Target: &astiface.Ident{Name: "result"}, Value: &astiface.NumberLit{IsInt: true, Int: 1}}},
		}},
		Else: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{Target: &astiface.Ident{Name: "result"}, Value: &astiface.NumberLit{IsInt: true, Int: 2}}},
		}},
	}
	ev.EvalStmt(ifStmt, scope, ctx)
	v := ev.EvalExpr(&astiface.Ident{Name: "result"}, scope, ctx)
	if v.AsI64() != 2 {
		t.Errorf("result = %d, want 2 (else branch)", v.AsI64())
	}
}

func TestWhileLoopWithBreak(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "i", Value: &astiface.NumberLit{IsInt: true, Int: 0}}, scope, ctx)
	loop := &astiface.WhileStmt{
		Cond: &astiface.BoolLit{Value: true},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.IncDecExpr{Op: "++", Target: &astiface.Ident{Name: "i"}}},
			&astiface.IfStmt{
				Cond: &astiface.BinaryExpr{Op: ">=", Left: &astiface.Ident{Name: "i"}, Right: &astiface.NumberLit{IsInt: true, Int: 3}},
				Then: &astiface.Block{Stmts: []astiface.Stmt{&astiface.BreakStmt{}}},
			},
		}},
	}
	ev.EvalStmt(loop, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	v := ev.EvalExpr(&astiface.Ident{Name: "i"}, scope, ctx)
	if v.AsI64() != 3 {
		t.Errorf("i after loop = %d, want 3", v.AsI64())
	}
}

func TestForInArray(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "sum", Value: &astiface.NumberLit{IsInt: true, Int: 0}}, scope, ctx)
	ev.EvalStmt(&astiface.LetStmt{Name: "arr", Value: &astiface.ArrayLit{Elements: []astiface.Expr{
		&astiface.NumberLit{IsInt: true, Int: 1},
		&astiface.NumberLit{IsInt: true, Int: 2},
		&astiface.NumberLit{IsInt: true, Int: 3},
	}}}, scope, ctx)
	forIn := &astiface.ForInStmt{
		KeyName:  "v",
		Iterable: &astiface.Ident{Name: "arr"},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{
				Op:     "+=",
				Target: &astiface.Ident{Name: "sum"},
				Value:  &astiface.Ident{Name: "v"},
			}},
		}},
	}
	ev.EvalStmt(forIn, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("unexpected throw: %v", ctx.ThrownValue)
	}
	v := ev.EvalExpr(&astiface.Ident{Name: "sum"}, scope, ctx)
	if v.AsI64() != 6 {
		t.Errorf("sum = %d, want 6", v.AsI64())
	}
}

func TestTryCatchFinallyOrdering(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "log", Value: &astiface.StringLit{Value: ""}}, scope, ctx)
	tryStmt := &astiface.TryStmt{
		Try: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ThrowStmt{Value: &astiface.StringLit{Value: "boom"}},
		}},
		CatchName: "e",
		Catch: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{
				Op:     "+=",
				Target: &astiface.Ident{Name: "log"},
				Value:  &astiface.StringLit{Value: "caught:"},
			}},
			&astiface.ExprStmt{X: &astiface.AssignExpr{
				Op:     "+=",
				Target: &astiface.Ident{Name: "log"},
				Value:  &astiface.Ident{Name: "e"},
			}},
		}},
		Finally: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{
				Op:     "+=",
				Target: &astiface.Ident{Name: "log"},
				Value:  &astiface.StringLit{Value: ";finally"},
			}},
		}},
	}
	ev.EvalStmt(tryStmt, scope, ctx)
	if ctx.IsThrowing {
		t.Fatalf("exception should have been caught, not left throwing: %v", ctx.ThrownValue)
	}
	v := ev.EvalExpr(&astiface.Ident{Name: "log"}, scope, ctx)
	if value.AsString(v).Data() != "caught:boom;finally" {
		t.Errorf("log = %q, want \"caught:boom;finally\"", value.AsString(v).Data())
	}
}

func TestTryFinallyRunsEvenWithoutCatchMatch(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "ran", Value: &astiface.BoolLit{Value: false}}, scope, ctx)
	tryStmt := &astiface.TryStmt{
		Try: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ThrowStmt{Value: &astiface.StringLit{Value: "boom"}},
		}},
		Finally: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{X: &astiface.AssignExpr{Target: &astiface.Ident{Name: "ran"}, Value: &astiface.BoolLit{Value: true}}},
		}},
	}
	ev.EvalStmt(tryStmt, scope, ctx)
	if !ctx.IsThrowing {
		t.Fatal("with no catch, the exception should still be throwing after finally")
	}
	ctx.IsThrowing = false // clear to read the variable without a throwing EvalExpr short-circuit concern
	v := ev.EvalExpr(&astiface.Ident{Name: "ran"}, scope, ctx)
	if !v.AsBool() {
		t.Error("finally should run even when there is no matching catch")
	}
}

func TestSwitchFallthroughUntilBreak(t *testing.T) {
	ev, scope, ctx := newTestScope()
	ev.EvalStmt(&astiface.LetStmt{Name: "log", Value: &astiface.StringLit{Value: ""}}, scope, ctx)
	sw := &astiface.SwitchStmt{
		Scrutinee: &astiface.NumberLit{IsInt: true, Int: 1},
		Cases: []astiface.SwitchCase{
			{Values: []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 1}}, Body: []astiface.Stmt{
				&astiface.ExprStmt{X: &astiface.AssignExpr{Op: "+=", Target: &astiface.Ident{Name: "log"}, Value: &astiface.StringLit{Value: "a"}}},
			}},
			{Values: []astiface.Expr{&astiface.NumberLit{IsInt: true, Int: 2}}, Body: []astiface.Stmt{
				&astiface.ExprStmt{X: &astiface.AssignExpr{Op: "+=", Target: &astiface.Ident{Name: "log"}, Value: &astiface.StringLit{Value: "b"}}},
				&astiface.BreakStmt{},
			}},
			{Values: nil, Body: []astiface.Stmt{
				&astiface.ExprStmt{X: &astiface.AssignExpr{Op: "+=", Target: &astiface.Ident{Name: "log"}, Value: &astiface.StringLit{Value: "default"}}},
			}},
		},
	}
	ev.EvalStmt(sw, scope, ctx)
	v := ev.EvalExpr(&astiface.Ident{Name: "log"}, scope, ctx)
	// Case 1 has no break, so execution falls through case 2's body and
	// stops at its break — "default" never runs.
	if value.AsString(v).Data() != "ab" {
		t.Errorf("log = %q, want \"ab\"", value.AsString(v).Data())
	}
}

func TestDefineObjectRegistersType(t *testing.T) {
	ev, _, _ := newTestScope()
	ev.EvalStmt(&astiface.DefineObjectStmt{
		Name: "Point",
		Fields: []astiface.FieldDecl{
			{Name: "x", Type: &astiface.TypeAnnotation{Name: "i32"}},
		},
	}, nil, nil)
	if ev.LookupType("Point") == nil {
		t.Fatal("DefineObjectStmt should register the type")
	}
}
