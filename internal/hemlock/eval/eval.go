// Package eval implements Hemlock's tree-walking evaluator (spec.md §4.4):
// the mutually-recursive EvalExpr/EvalStmt pair driving every expression and
// statement form over an Environment and a per-task ExecutionContext.
//
// Grounded on the teacher's interpreter-adjacent control-flow idiom in
// internal/exception (signal-flag propagation generalized here to the four
// ExecutionContext flags) and internal/runtime/standard.go's built-in
// dispatch shape, now delegated to the builtin package per spec.md §9's
// tagged-enum-receiver redesign note.
package eval

import (
	"sync"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/coerce"
	"github.com/hemlock-lang/hemlock/internal/hemlock/concurrency"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// Evaluator holds the process-wide mutable state spec.md §9 calls out
// (object-type registry, thread budget, signal table) scoped to one
// interpreter instance rather than true Go package-level globals, per §9's
// suggested cleaner redesign.
type Evaluator struct {
	mu          sync.Mutex
	objectTypes map[string]*value.TypeDescriptor
	libraries   map[string]LibraryHandle // import "libfoo.so" targets; see ffi package

	Budget  *concurrency.ThreadBudget
	Signals *concurrency.SignalTable

	// CurrentLibrary is the most recently imported FFI library, the target
	// `extern fn` declarations resolve against (spec.md §4.9).
	CurrentLibrary LibraryHandle

	// FFI is the installed FFI runtime (nil until cliutil wires one up from
	// the ffi package), used to make ffi-function calls (spec.md §4.9).
	FFI FFIInvoker
}

// LibraryHandle is implemented by the ffi package's loaded-library type; eval
// depends only on this interface to avoid importing ffi (which would import
// eval back for the callback trampoline).
type LibraryHandle interface {
	Path() string
}

func New() *Evaluator {
	return &Evaluator{
		objectTypes: make(map[string]*value.TypeDescriptor),
		libraries:   make(map[string]LibraryHandle),
		Signals:     concurrency.NewSignalTable(),
	}
}

// RegisterType records a `define Name { fields… }` declaration.
func (ev *Evaluator) RegisterType(td *value.TypeDescriptor) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.objectTypes[td.Name] = td
}

func (ev *Evaluator) LookupType(name string) *value.TypeDescriptor {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.objectTypes[name]
}

// throw sets ctx's throw signal from a Go error, translating a
// *diagnostics.Thrown into its carried Value and anything else into a
// plain string exception.
func (ev *Evaluator) throw(ctx *callframe.ExecutionContext, err error) value.Value {
	if thrown, ok := err.(*diagnostics.Thrown); ok {
		ctx.Throw(thrown.Value)
		return value.Null()
	}
	ctx.Throw(value.NewString(err.Error()))
	return value.Null()
}

// EvalProgram runs a top-level sequence of statements in the given
// environment with a fresh ExecutionContext, reporting an uncaught
// exception or returning normally.
func (ev *Evaluator) EvalProgram(stmts []astiface.Stmt, root *env.Environment) error {
	ctx := callframe.New()
	for _, s := range stmts {
		ev.EvalStmt(s, root, ctx)
		if ctx.IsThrowing {
			return &diagnostics.Thrown{Value: ctx.ThrownValue, Cat: diagnostics.CategoryUser, Stack: toFrames(ctx.Frames())}
		}
		if ctx.IsReturning {
			break
		}
	}
	return nil
}

// toFrames converts the call stack (most recently pushed last) into a trace
// ordered most recent call first.
func toFrames(cf []callframe.Frame) []diagnostics.Frame {
	out := make([]diagnostics.Frame, len(cf))
	for i, f := range cf {
		out[len(cf)-1-i] = diagnostics.Frame{Function: f.Function, File: f.File, Line: f.Line}
	}
	return out
}

// coerceHelper adapts coerce.EvalDefaultFunc to call back into EvalExpr for
// object-field default-value expressions.
func (ev *Evaluator) coerceHelper() coerce.EvalDefaultFunc {
	return func(expr any, validationEnv any) (value.Value, error) {
		e, ok := expr.(astiface.Expr)
		if !ok {
			return value.Null(), nil
		}
		scope, _ := validationEnv.(*env.Environment)
		if scope == nil {
			return value.Null(), nil
		}
		ctx := callframe.New()
		v := ev.EvalExpr(e, scope, ctx)
		if ctx.IsThrowing {
			return value.Value{}, &diagnostics.Thrown{Value: ctx.ThrownValue}
		}
		return v, nil
	}
}

func (ev *Evaluator) convertToType(v value.Value, ann *astiface.TypeAnnotation, scope *env.Environment) (value.Value, error) {
	if ann == nil {
		return v, nil
	}
	td := primitiveType(ann.Name)
	if td == nil {
		td = ev.LookupType(ann.Name)
		if td == nil {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "unknown type %q", ann.Name)
		}
	}
	return coerce.ToType(v, td, ev.coerceHelper(), scope)
}

// convertToTypeDesc is convertToType's direct-TypeDescriptor counterpart,
// used where the descriptor is already resolved (function parameter and
// return types) rather than a raw AST annotation name needing lookup.
func (ev *Evaluator) convertToTypeDesc(v value.Value, td *value.TypeDescriptor, scope *env.Environment) (value.Value, error) {
	if td == nil {
		return v, nil
	}
	return coerce.ToType(v, td, ev.coerceHelper(), scope)
}

func primitiveType(name string) *value.TypeDescriptor {
	tag, ok := primitiveTagByName[name]
	if !ok {
		return nil
	}
	return value.Primitive(tag)
}

var primitiveTagByName = map[string]value.Tag{
	"i8": value.TagI8, "u8": value.TagU8,
	"i16": value.TagI16, "u16": value.TagU16,
	"i32": value.TagI32, "u32": value.TagU32,
	"i64": value.TagI64, "u64": value.TagU64,
	"f32": value.TagF32, "f64": value.TagF64,
	"bool": value.TagBool, "string": value.TagString,
	"buffer": value.TagBuffer, "ptr": value.TagPtr,
	"rune": value.TagRune,
}
