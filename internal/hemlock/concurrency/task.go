package concurrency

import (
	"runtime"
	"sync"

	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// State is a task's lifecycle state (spec.md §3).
type State int

const (
	StateReady State = iota
	StateRunning
	StateCompleted
)

// Entry is the function the task runtime invokes on its dedicated thread:
// it receives the task's own ExecutionContext and must return the result
// Value on success, or set ctx.IsThrowing and return any Value on failure.
// The eval package supplies this, closing over the target function, its
// bound arguments, and the enclosing environment.
type Entry func(ctx *callframe.ExecutionContext) value.Value

// TaskObj bundles a spawned function invocation with its own
// ExecutionContext, completion state, and join/detach bookkeeping
// (spec.md §3, §4.8).
type TaskObj struct {
	hdr Header

	mu        sync.Mutex
	state     State
	detached  bool
	joined    bool
	done      chan struct{}
	ctx       *callframe.ExecutionContext
	result    value.Value
	exception *diagnostics.Thrown
}

func (t *TaskObj) Header() *value.Header { return &t.hdr }
func (t *TaskObj) Kind() value.Kind      { return KindTask }

func (t *TaskObj) ReleaseChildren() {
	t.mu.Lock()
	defer t.mu.Unlock()
	value.Release(t.result)
	t.result = value.Value{}
}

// Spawn starts entry on a dedicated OS thread (runtime.LockOSThread pins the
// goroutine so it never migrates and is never time-shared cooperatively with
// other tasks' code — the Go-idiomatic realization of spec.md §4.8's "new OS
// thread" requirement) and returns the task handle immediately. budget, if
// non-nil, bounds how many task threads may run concurrently.
func Spawn(entry Entry, budget *ThreadBudget) value.Value {
	t := &TaskObj{
		hdr:   *value.NewHeader(),
		state: StateReady,
		done:  make(chan struct{}),
		ctx:   callframe.New(),
	}
	handle := value.FromHeap(value.TagTask, t)
	value.Retain(handle)

	go func() {
		if budget != nil {
			budget.Acquire(1)
			defer budget.Release(1)
		}
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		t.mu.Lock()
		t.state = StateRunning
		t.mu.Unlock()

		result := entry(t.ctx)

		t.mu.Lock()
		if t.ctx.IsThrowing {
			t.exception = &diagnostics.Thrown{Value: t.ctx.ThrownValue, Cat: diagnostics.CategoryUser}
		} else {
			value.Retain(result)
			t.result = result
		}
		t.state = StateCompleted
		t.mu.Unlock()
		close(t.done)
	}()

	return handle
}

// Join blocks the caller until the task completes (the channel close
// provides the release-acquire synchronization spec.md §4.8 requires), then
// either returns the result or re-raises the task's exception in the
// caller's context. Joining an already-joined or detached task throws.
func (t *TaskObj) Join() (value.Value, error) {
	t.mu.Lock()
	if t.detached {
		t.mu.Unlock()
		return value.Value{}, diagnostics.New(diagnostics.CategoryChannelMisuse, "join on a detached task")
	}
	if t.joined {
		t.mu.Unlock()
		return value.Value{}, diagnostics.New(diagnostics.CategoryChannelMisuse, "task already joined")
	}
	t.joined = true
	t.mu.Unlock()

	<-t.done

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.exception != nil {
		return value.Value{}, t.exception
	}
	value.Retain(t.result)
	return t.result, nil
}

// Detach marks the task detached, after which Join throws. The task's
// thread does not release anything on completion; the stored result is
// released only by ReleaseChildren when the handle itself is freed.
func (t *TaskObj) Detach() {
	t.mu.Lock()
	t.detached = true
	t.mu.Unlock()
}

func (t *TaskObj) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func AsTask(v value.Value) *TaskObj {
	if v.Tag != value.TagTask {
		return nil
	}
	to, _ := v.Heap.(*TaskObj)
	return to
}
