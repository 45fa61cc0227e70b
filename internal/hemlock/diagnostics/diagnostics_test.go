package diagnostics

import (
	"testing"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func TestNewFormatsMessageAndCategory(t *testing.T) {
	thrown := New(CategoryDivByZero, "cannot divide %d by zero", 5)
	if thrown.Cat != CategoryDivByZero {
		t.Errorf("Cat = %v, want %v", thrown.Cat, CategoryDivByZero)
	}
	if thrown.Error() != "cannot divide 5 by zero" {
		t.Errorf("Error() = %q, want %q", thrown.Error(), "cannot divide 5 by zero")
	}
}

func TestUserThrowWrapsArbitraryValue(t *testing.T) {
	thrown := UserThrow(value.I32(42))
	if thrown.Cat != CategoryUser {
		t.Errorf("Cat = %v, want %v", thrown.Cat, CategoryUser)
	}
	if thrown.Error() == "" {
		t.Error("Error() should describe a non-string thrown value rather than return empty")
	}
}

func TestThrownErrorPrefersStringPayload(t *testing.T) {
	thrown := UserThrow(value.NewString("boom"))
	if thrown.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", thrown.Error(), "boom")
	}
}

func TestNewFatalCapturesMessageAndStack(t *testing.T) {
	f := NewFatal(FatalAllocation, "out of memory: wanted %d bytes", 1024)
	if f.Kind != FatalAllocation {
		t.Errorf("Kind = %v, want %v", f.Kind, FatalAllocation)
	}
	if f.Error() != "[ALLOCATION_FAILURE] out of memory: wanted 1024 bytes" {
		t.Errorf("Error() = %q", f.Error())
	}
	if len(f.Stack) == 0 {
		t.Error("NewFatal should capture a non-empty Go call stack")
	}
}

func TestFatalWithStackOverridesCapturedStack(t *testing.T) {
	f := NewFatal(FatalPanic, "panic: %s", "oops")
	custom := []Frame{{Function: "main", File: "main.hl", Line: 10}}
	f2 := f.WithStack(custom)
	if f2 != f {
		t.Fatal("WithStack should return the same *Fatal for chaining")
	}
	if len(f.Stack) != 1 || f.Stack[0].Function != "main" {
		t.Errorf("Stack after WithStack = %+v, want the custom frame", f.Stack)
	}
}
