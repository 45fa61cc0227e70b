package concurrency

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
)

// SignalHandler invokes a Hemlock function in a fresh ExecutionContext with
// the received signal number (spec.md §5). Supplied by eval, which closes
// over the handler function Value and its environment.
type SignalHandler func(ctx *callframe.ExecutionContext, sig int)

// SignalTable is the process-wide signal-number→handler registry spec.md
// §5 describes, protected against re-entrancy by its own mutex. Grounded on
// the REPL driver's signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
// usage, generalized from a single fixed Ctrl-C handler to an
// arbitrary-signal registry user code installs into.
type SignalTable struct {
	mu       sync.Mutex
	handlers map[int]SignalHandler
	ch       chan os.Signal
	started  bool
}

func NewSignalTable() *SignalTable {
	return &SignalTable{handlers: make(map[int]SignalHandler)}
}

// Install registers handler for sig, starting the shared notification loop
// on first use.
func (st *SignalTable) Install(sig int, handler SignalHandler) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.handlers[sig] = handler
	if !st.started {
		st.ch = make(chan os.Signal, 8)
		signal.Notify(st.ch)
		st.started = true
		go st.loop()
	}
}

func (st *SignalTable) loop() {
	for s := range st.ch {
		sig, ok := s.(syscall.Signal)
		if !ok {
			continue
		}
		st.mu.Lock()
		handler, found := st.handlers[int(sig)]
		st.mu.Unlock()
		if !found {
			continue
		}
		handler(callframe.New(), int(sig))
	}
}

// Remove uninstalls the handler for sig.
func (st *SignalTable) Remove(sig int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.handlers, sig)
}
