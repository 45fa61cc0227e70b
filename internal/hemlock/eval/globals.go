package eval

import (
	"os"
	"time"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/builtin"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/concurrency"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// sizeofTable gives the byte size of every built-in type name sizeof() may
// be asked about (spec.md §7: an unrecognized name is fatal, not catchable).
var sizeofTable = map[string]int64{
	"i8": 1, "u8": 1, "bool": 1,
	"i16": 2, "u16": 2,
	"i32": 4, "u32": 4, "f32": 4, "rune": 4,
	"i64": 8, "u64": 8, "f64": 8, "ptr": 8,
}

// NewGlobalEnv builds the root Environment core built-ins are registered
// into (spec.md §4.1, §4.6, §4.8, §4.9), plus the global `args` array of
// command-line strings the host passes in (spec.md §6).
func (ev *Evaluator) NewGlobalEnv(args []string) *env.Environment {
	root := env.New()

	define := func(name string, fn NativeFn) {
		root.Define(name, newBuiltinFunction(name, fn), true)
	}

	define("print", biPrint)
	define("typeof", biTypeof)
	define("spawn", biSpawn)
	define("join", biJoin)
	define("detach", biDetach)
	define("channel", biChannel)
	define("free", biFree)
	define("panic", biPanic)
	define("sizeof", biSizeof)
	define("getenv", biGetenv)
	define("setenv", biSetenv)
	define("unsetenv", biUnsetenv)
	define("sleep", biSleep)
	define("signal", biSignal)

	argv := make([]value.Value, len(args))
	for i, a := range args {
		argv[i] = value.NewString(a)
	}
	root.Define("args", value.NewArray(argv), true)

	return root
}

func biPrint(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	for i, a := range args {
		if i > 0 {
			os.Stdout.WriteString(" ")
		}
		os.Stdout.WriteString(builtin.Display(a))
	}
	os.Stdout.WriteString("\n")
	return value.Null()
}

func biTypeof(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "typeof expects 1 argument, got %d", len(args)))
	}
	return value.NewString(args[0].TypeOf())
}

func biSpawn(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) < 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "spawn expects a function argument"))
	}
	if args[0].Tag != value.TagFunction {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "spawn's first argument must be a function, got %s", args[0].TypeOf()))
	}
	fn := value.AsFunction(args[0])
	return ev.spawnTask(fn, args[1:], ctx)
}

func biJoin(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "join expects 1 argument, got %d", len(args)))
	}
	return ev.joinTask(args[0], ctx)
}

func biDetach(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "detach expects 1 argument, got %d", len(args)))
	}
	return ev.detachTask(args[0], ctx)
}

func biChannel(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	capacity := 0
	if len(args) == 1 {
		if !args[0].Tag.IsInteger() {
			return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "channel's capacity must be an integer, got %s", args[0].TypeOf()))
		}
		capacity = int(args[0].AsI64())
	} else if len(args) > 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "channel expects 0 or 1 arguments, got %d", len(args)))
	}
	if capacity < 0 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "channel capacity must be non-negative, got %d", capacity))
	}
	return concurrency.NewChannel(capacity)
}

// biFree implements free(x) (spec.md §4.1, §9): restricted to buffers,
// arrays, and objects, tombstoning the entity regardless of outstanding
// reference count.
func biFree(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "free expects 1 argument, got %d", len(args)))
	}
	v := args[0]
	if !value.Freeable(v) {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "free() cannot be applied to a %s", v.TypeOf()))
	}
	value.Free(v)
	return value.Null()
}

// biPanic implements panic(msg?) (spec.md §7): fatal and non-catchable,
// terminates the process immediately with a stack trace.
func biPanic(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	msg := "panic"
	if len(args) == 1 {
		msg = builtin.Display(args[0])
	} else if len(args) > 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "panic expects 0 or 1 arguments, got %d", len(args)))
	}
	diagnostics.Abort(diagnostics.NewFatal(diagnostics.FatalPanic, "%s", msg).WithStack(toFrames(ctx.Frames())))
	return value.Null() // unreachable: Abort exits the process.
}

// biSizeof implements sizeof(type_name) (spec.md §7): an unrecognized
// built-in type name is fatal, not catchable.
func biSizeof(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 || value.AsString(args[0]) == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "sizeof expects 1 string argument naming a built-in type"))
	}
	name := value.AsString(args[0]).Data()
	size, ok := sizeofTable[name]
	if !ok {
		diagnostics.Abort(diagnostics.NewFatal(diagnostics.FatalUnknownSizeof, "unknown built-in type %q", name).WithStack(toFrames(ctx.Frames())))
	}
	return value.I64(size)
}

func biGetenv(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 || value.AsString(args[0]) == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "getenv expects 1 string argument"))
	}
	v, ok := os.LookupEnv(value.AsString(args[0]).Data())
	if !ok {
		return value.Null()
	}
	return value.NewString(v)
}

func biSetenv(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 2 || value.AsString(args[0]) == nil || value.AsString(args[1]) == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "setenv expects 2 string arguments"))
	}
	if err := os.Setenv(value.AsString(args[0]).Data(), value.AsString(args[1]).Data()); err != nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryFileIO, "setenv: %v", err))
	}
	return value.Null()
}

func biUnsetenv(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 || value.AsString(args[0]) == nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "unsetenv expects 1 string argument"))
	}
	if err := os.Unsetenv(value.AsString(args[0]).Data()); err != nil {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryFileIO, "unsetenv: %v", err))
	}
	return value.Null()
}

func biSleep(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 1 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "sleep expects 1 numeric argument (seconds)"))
	}
	var seconds float64
	switch {
	case args[0].Tag.IsFloat():
		seconds = args[0].AsF64()
	case args[0].Tag.IsInteger():
		seconds = float64(args[0].AsI64())
	default:
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "sleep's argument must be numeric, got %s", args[0].TypeOf()))
	}
	if seconds < 0 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "sleep duration must be non-negative"))
	}
	time.Sleep(time.Duration(seconds * float64(time.Second)))
	return value.Null()
}

// biSignal implements signal(num, handler) (spec.md §5): installs handler, a
// 1-arity Hemlock function receiving the signal number, into the
// process-wide SignalTable. The handler runs on the signal-handling thread
// in a fresh ExecutionContext of its own; an uncaught exception there is
// reported through diagnostics.ReportUncaught, which terminates the process,
// since there is no caller frame to propagate to.
func biSignal(ev *Evaluator, args []value.Value, ctx *callframe.ExecutionContext) value.Value {
	if len(args) != 2 {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryArity, "signal expects 2 arguments (number, handler), got %d", len(args)))
	}
	if !args[0].Tag.IsInteger() {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "signal's first argument must be an integer, got %s", args[0].TypeOf()))
	}
	if args[1].Tag != value.TagFunction {
		return ev.throw(ctx, diagnostics.New(diagnostics.CategoryCoercion, "signal's second argument must be a function, got %s", args[1].TypeOf()))
	}
	sig := int(args[0].AsI64())
	fn := value.AsFunction(args[1])
	value.Retain(args[1])

	handler := func(sigCtx *callframe.ExecutionContext, receivedSig int) {
		closureEnv, _ := fn.Closure.(*env.Environment)
		callEnv := closureEnv.NewChild()
		defer callEnv.Release()

		if len(fn.Params) == 1 {
			converted, err := ev.convertToTypeDesc(value.I64(int64(receivedSig)), fn.Params[0].Type, callEnv)
			if err != nil {
				ev.throw(sigCtx, err)
				return
			}
			callEnv.Define(fn.Params[0].Name, converted, false)
		}

		body, _ := fn.Body.(*astiface.Block)
		if body != nil {
			ev.evalBlock(body, callEnv, sigCtx)
		}
		if sigCtx.IsThrowing {
			diagnostics.ReportUncaught(&diagnostics.Thrown{Value: sigCtx.ThrownValue, Cat: diagnostics.CategoryUser, Stack: toFrames(sigCtx.Frames())})
		}
	}

	ev.Signals.Install(sig, handler)
	return value.Null()
}
