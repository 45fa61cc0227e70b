package ffi

import (
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// CallbackInvoker is implemented by the evaluator bridge (wired up by
// cliutil, not by the eval package itself, to keep eval free of an ffi
// import): runs a Hemlock function's body against C-sourced arguments,
// spec.md §4.9's "fresh ExecutionContext... invokes the body in a child of
// the captured closure env".
type CallbackInvoker interface {
	InvokeCallback(fn value.Value, args []value.Value) (value.Value, error)
}

// trampolineMu is the process-wide interpreter lock spec.md §4.9 requires:
// the evaluator is not reentrant across threads, so every callback
// invocation (each potentially arriving on its own OS thread from foreign
// code) serializes here before touching any Hemlock state.
var trampolineMu sync.Mutex

// Callback is a Hemlock function exposed as a C function pointer. purego's
// NewCallback builds its trampoline from a concrete Go function type, so a
// fixed bank of arities (0..maxCallbackArity) is pre-registered; each bound
// Callback claims one slot keyed by its own pointer.
type Callback struct {
	invoker CallbackInvoker
	fn      value.Value
	params  []cType
	ret     cType
}

const maxCallbackArity = 6

// NewCallback builds the C function pointer for fn with the declared
// parameter/return C types, backed by invoker. Exceptions raised inside fn
// cannot propagate to C (spec.md §4.9): they are logged to stderr and
// discarded, and the zero value of the declared return type is written back.
func NewCallback(invoker CallbackInvoker, fn value.Value, paramTypeNames []string, retTypeName string) (uintptr, error) {
	if len(paramTypeNames) > maxCallbackArity {
		return 0, fmt.Errorf("ffi: callback arity %d exceeds the supported maximum of %d", len(paramTypeNames), maxCallbackArity)
	}
	params := make([]cType, len(paramTypeNames))
	for i, n := range paramTypeNames {
		t, err := cTypeOf(n)
		if err != nil {
			return 0, err
		}
		params[i] = t
	}
	ret, err := cTypeOf(retTypeName)
	if err != nil {
		return 0, err
	}
	value.Retain(fn)
	cb := &Callback{invoker: invoker, fn: fn, params: params, ret: ret}
	return purego.NewCallback(callbackShims[len(params)](cb)), nil
}

// invoke runs the bound Hemlock function under the process-wide trampoline
// lock and converts its result (or swallows its exception) back to a slot.
func (cb *Callback) invoke(args []uintptr) uintptr {
	trampolineMu.Lock()
	defer trampolineMu.Unlock()

	hargs := make([]value.Value, len(args))
	for i, a := range args {
		hargs[i] = valueFromSlot(cb.params[i], a)
	}
	result, err := cb.invoker.InvokeCallback(cb.fn, hargs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ffi: callback exception discarded:", err)
		return 0
	}
	slot, err := marshalArg(cb.ret, result)
	if err != nil {
		diagnostics.Abort(diagnostics.NewFatal(diagnostics.FatalFFICallbackPrep, "callback return marshalling failed: %v", err))
	}
	return slot
}

// callbackShims adapts the variable-arity call into the fixed Go function
// signatures purego.NewCallback's reflection expects, one per supported
// arity; each closes over cb and forwards through invoke.
var callbackShims = [maxCallbackArity + 1]func(*Callback) interface{}{
	func(cb *Callback) interface{} {
		return func() uintptr { return cb.invoke(nil) }
	},
	func(cb *Callback) interface{} {
		return func(a0 uintptr) uintptr { return cb.invoke([]uintptr{a0}) }
	},
	func(cb *Callback) interface{} {
		return func(a0, a1 uintptr) uintptr { return cb.invoke([]uintptr{a0, a1}) }
	},
	func(cb *Callback) interface{} {
		return func(a0, a1, a2 uintptr) uintptr { return cb.invoke([]uintptr{a0, a1, a2}) }
	},
	func(cb *Callback) interface{} {
		return func(a0, a1, a2, a3 uintptr) uintptr { return cb.invoke([]uintptr{a0, a1, a2, a3}) }
	},
	func(cb *Callback) interface{} {
		return func(a0, a1, a2, a3, a4 uintptr) uintptr { return cb.invoke([]uintptr{a0, a1, a2, a3, a4}) }
	},
	func(cb *Callback) interface{} {
		return func(a0, a1, a2, a3, a4, a5 uintptr) uintptr {
			return cb.invoke([]uintptr{a0, a1, a2, a3, a4, a5})
		}
	},
}
