// Package callframe implements the per-task ExecutionContext spec.md §4.4-§4.6
// describes: the four orthogonal control-flow signals the evaluator threads
// through statement execution, the call-stack frames used for stack traces,
// and the LIFO defer-call discipline of §4.5.
//
// Grounded on the teacher's internal/exception package (its defer/recover
// idiom and StackFrame shape), generalized from single Go-panic recovery to
// a full interpreter-level defer stack with its own unwind ordering.
package callframe

import "github.com/hemlock-lang/hemlock/internal/hemlock/value"

// DeferredCall is one `defer <call-expression>;` entry: the call expression
// (opaque to this package — astiface.CallExpr in practice) plus the
// environment it closed over at push time (retained for the entry's
// lifetime), per spec.md §4.5.
type DeferredCall struct {
	Call any // astiface.CallExpr
	Env  value.ClosureEnv
}

// Frame identifies one active Hemlock function call for stack traces
// (spec.md §4.6).
type Frame struct {
	Function string
	File     string
	Line     int
}

// ExecutionContext is the per-task bag of control-flow state the evaluator
// threads through statement/expression evaluation (spec.md §4.4). Each
// spawned task owns its own instance; nothing here is shared across
// goroutines/OS threads.
type ExecutionContext struct {
	IsReturning  bool
	ReturnValue  value.Value
	IsBreaking   bool
	IsContinuing bool
	IsThrowing   bool
	ThrownValue  value.Value

	calls  []Frame
	defers []DeferredCall
}

// New returns a fresh, idle ExecutionContext.
func New() *ExecutionContext {
	return &ExecutionContext{}
}

// Signaling reports whether any control-flow signal is currently set; the
// evaluator checks this after every statement to short-circuit the rest of
// a block (spec.md §4.4).
func (ctx *ExecutionContext) Signaling() bool {
	return ctx.IsReturning || ctx.IsBreaking || ctx.IsContinuing || ctx.IsThrowing
}

// ClearLoopSignals clears break/continue, called by while/for/for-in after
// consuming them at the end of one iteration.
func (ctx *ExecutionContext) ClearLoopSignals() {
	ctx.IsBreaking = false
	ctx.IsContinuing = false
}

// Throw sets the throw signal with the given exception Value, retaining it
// for the duration it is in flight.
func (ctx *ExecutionContext) Throw(v value.Value) {
	value.Retain(v)
	ctx.IsThrowing = true
	ctx.ThrownValue = v
}

// ClearThrow clears the throw signal and returns the previously thrown value
// without releasing it; the caller (a try/catch) takes ownership of it.
func (ctx *ExecutionContext) ClearThrow() value.Value {
	v := ctx.ThrownValue
	ctx.IsThrowing = false
	ctx.ThrownValue = value.Value{}
	return v
}

// Return sets the return signal with v (already owned by the caller; the
// context takes ownership and the caller must not release it separately).
func (ctx *ExecutionContext) Return(v value.Value) {
	ctx.IsReturning = true
	ctx.ReturnValue = v
}

// ---- call stack ----

// PushFrame records a new active call, used for stack-trace reporting on an
// eventual uncaught exception (spec.md §4.6).
func (ctx *ExecutionContext) PushFrame(f Frame) {
	ctx.calls = append(ctx.calls, f)
}

// PopFrame removes the most recently pushed frame. The evaluator skips this
// when an exception is in flight, per spec.md §4.4, so the frame survives
// into the eventual uncaught-exception report.
func (ctx *ExecutionContext) PopFrame() {
	if len(ctx.calls) == 0 {
		return
	}
	ctx.calls = ctx.calls[:len(ctx.calls)-1]
}

// Frames returns the active call stack, most-recently-pushed last.
func (ctx *ExecutionContext) Frames() []Frame {
	return ctx.calls
}

// ---- defer stack ----

// DeferMark is an opaque bookmark into the defer stack, taken when a
// function call begins so its Unwind can run only the entries it itself
// pushed (spec.md §4.5's "function-specific slice" rule).
type DeferMark int

// Mark returns a bookmark at the defer stack's current depth.
func (ctx *ExecutionContext) Mark() DeferMark {
	return DeferMark(len(ctx.defers))
}

// PushDefer records a deferred call at the top of the stack.
func (ctx *ExecutionContext) PushDefer(d DeferredCall) {
	d.Env.Retain()
	ctx.defers = append(ctx.defers, d)
}

// Unwind pops and returns every defer entry pushed at or after mark, in LIFO
// (top-of-stack-first) order, for the caller to execute. The caller owns
// releasing each entry's Env once it is done with it.
func (ctx *ExecutionContext) Unwind(mark DeferMark) []DeferredCall {
	if int(mark) >= len(ctx.defers) {
		return nil
	}
	pending := ctx.defers[mark:]
	out := make([]DeferredCall, len(pending))
	for i := range pending {
		out[i] = pending[len(pending)-1-i]
	}
	ctx.defers = ctx.defers[:mark]
	return out
}

// SavedSignals captures every control-flow flag so a finally block can run
// with a clean slate and have the prior state restored afterward, unless
// finally itself produced a new signal (spec.md §4.4's finally-supersedes
// rule).
type SavedSignals struct {
	isReturning  bool
	returnValue  value.Value
	isBreaking   bool
	isContinuing bool
	isThrowing   bool
	thrownValue  value.Value
}

// Save captures and clears the current signals.
func (ctx *ExecutionContext) Save() SavedSignals {
	s := SavedSignals{
		isReturning:  ctx.IsReturning,
		returnValue:  ctx.ReturnValue,
		isBreaking:   ctx.IsBreaking,
		isContinuing: ctx.IsContinuing,
		isThrowing:   ctx.IsThrowing,
		thrownValue:  ctx.ThrownValue,
	}
	ctx.IsReturning, ctx.ReturnValue = false, value.Value{}
	ctx.IsBreaking, ctx.IsContinuing = false, false
	ctx.IsThrowing, ctx.ThrownValue = false, value.Value{}
	return s
}

// Restore reinstates signals saved by Save, but only if nothing new was
// signaled in the meantime (finally's own signal supersedes the saved one).
func (ctx *ExecutionContext) Restore(s SavedSignals) {
	if ctx.Signaling() {
		return
	}
	ctx.IsReturning, ctx.ReturnValue = s.isReturning, s.returnValue
	ctx.IsBreaking, ctx.IsContinuing = s.isBreaking, s.isContinuing
	ctx.IsThrowing, ctx.ThrownValue = s.isThrowing, s.thrownValue
}
