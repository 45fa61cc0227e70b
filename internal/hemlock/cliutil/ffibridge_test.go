package cliutil

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/eval"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestAnnotationNameNilYieldsNull(t *testing.T) {
	if got := annotationName(nil); got != "null" {
		t.Errorf("annotationName(nil) = %q, want \"null\"", got)
	}
}

func TestAnnotationNameReturnsAnnotated(t *testing.T) {
	if got := annotationName(&astiface.TypeAnnotation{Name: "i64"}); got != "i64" {
		t.Errorf("annotationName(i64) = %q, want \"i64\"", got)
	}
}

func TestRunModulePrepassErrorsOnExternFnWithoutImport(t *testing.T) {
	ev := eval.New()
	root := ev.NewGlobalEnv(nil)
	stmts := []astiface.Stmt{
		&astiface.ExternFnStmt{Name: "puts", Params: []astiface.ExternParam{{Name: "s", Type: &astiface.TypeAnnotation{Name: "string"}}}, Return: &astiface.TypeAnnotation{Name: "i32"}},
	}
	if err := RunModulePrepass(ev, root, stmts); err == nil {
		t.Fatal("an extern fn declared with no preceding import should error")
	}
}

func TestRunModulePrepassSkipsExportStmt(t *testing.T) {
	ev := eval.New()
	root := ev.NewGlobalEnv(nil)
	stmts := []astiface.Stmt{
		&astiface.ExportStmt{Names: []string{"foo"}},
	}
	if err := RunModulePrepass(ev, root, stmts); err != nil {
		t.Errorf("an export statement alone should not error: %v", err)
	}
}

func TestFFIBridgeCallRejectsNonFFIValue(t *testing.T) {
	ev := eval.New()
	bridge := NewFFIBridge(ev)
	_, err := bridge.Call(value.I32(1), nil)
	if err == nil {
		t.Fatal("calling a non-FFI value through the bridge should error")
	}
}

func TestFFIBridgeInvokeCallbackDelegatesToEvaluator(t *testing.T) {
	ev := eval.New()
	scope := env.New()
	ctx := callframe.New()
	fnVal := ev.EvalExpr(&astiface.FunctionLit{
		Name: "ident",
		Params: []astiface.ParamDecl{{Name: "x"}},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ReturnStmt{Value: &astiface.Ident{Name: "x"}},
		}},
	}, scope, ctx)

	bridge := NewFFIBridge(ev)
	result, err := bridge.InvokeCallback(fnVal, []value.Value{value.I32(5)})
	if err != nil {
		t.Fatalf("InvokeCallback: %v", err)
	}
	if result.AsI64() != 5 {
		t.Errorf("InvokeCallback(ident, 5) = %d, want 5", result.AsI64())
	}
}
