package cliutil

import (
	"fmt"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/eval"
	"github.com/hemlock-lang/hemlock/internal/hemlock/ffi"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// FFIBridge wires eval.Evaluator to the ffi package's runtime. It lives here
// (not in eval or ffi) because it is the one component allowed to import
// both: eval declares FFIInvoker/LibraryHandle as import-cycle-avoiding
// seams, and ffi declares CallbackInvoker the same way for the opposite
// direction; this type satisfies both from one place.
type FFIBridge struct {
	ev *eval.Evaluator
}

func NewFFIBridge(ev *eval.Evaluator) *FFIBridge { return &FFIBridge{ev: ev} }

// Call implements eval.FFIInvoker: a Hemlock `extern fn` call into C.
func (b *FFIBridge) Call(fn value.Value, args []value.Value) (value.Value, error) {
	f := ffi.AsFFIFunction(fn)
	if f == nil {
		return value.Value{}, fmt.Errorf("ffi: value is not an ffi-function")
	}
	return f.Call(args)
}

// InvokeCallback implements ffi.CallbackInvoker: C calling back into a
// Hemlock function exposed as a callback, under a fresh ExecutionContext in
// a child of the function's captured closure environment (spec.md §4.9).
func (b *FFIBridge) InvokeCallback(fn value.Value, args []value.Value) (value.Value, error) {
	return b.ev.InvokeAsCallback(fn, args)
}

// RunModulePrepass walks stmts at the top level, loading FFI libraries for
// every ImportStmt and registering `extern fn` declarations as
// TagFFIFunction bindings in root, before the evaluator runs the program
// body (spec.md §4.9's "current import target" scoping).
func RunModulePrepass(ev *eval.Evaluator, root *env.Environment, stmts []astiface.Stmt) error {
	var current *ffi.Library

	for _, s := range stmts {
		switch n := s.(type) {
		case *astiface.ImportStmt:
			lib, err := ffi.Open(n.Library)
			if err != nil {
				return err
			}
			current = lib
			ev.CurrentLibrary = lib
		case *astiface.ExternFnStmt:
			if current == nil {
				return fmt.Errorf("extern fn %q declared with no preceding import", n.Name)
			}
			paramTypes := make([]string, len(n.Params))
			for i, p := range n.Params {
				paramTypes[i] = annotationName(p.Type)
			}
			retType := annotationName(n.Return)
			fn, err := ffi.Resolve(current, n.Name, paramTypes, retType)
			if err != nil {
				return err
			}
			if err := root.Define(n.Name, fn, true); err != nil {
				return fmt.Errorf("extern fn %q: %w", n.Name, err)
			}
		case *astiface.ExportStmt:
			// Re-exporting top-level names is a module-linking concern owned
			// by the out-of-scope bundler/resolver; nothing to do at eval time.
		}
	}
	return nil
}

func annotationName(ann *astiface.TypeAnnotation) string {
	if ann == nil {
		return "null"
	}
	return ann.Name
}
