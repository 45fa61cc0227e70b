// Command hemlock is the Hemlock language CLI driver: `hemlock <script>`
// runs a source file end to end, `hemlock --bundle` builds a bundle
// artifact from an already-resolved entry payload.
//
// Grounded on the teacher's cmd/orizon-repl/main.go (flag parsing, signal
// handling shape) and cmd/orizon/main.go (multi-mode command dispatch),
// adapted from Orizon's tool-suite/REPL surface to Hemlock's single-binary
// run/bundle surface (SPEC_FULL.md §6).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hemlock-lang/hemlock/internal/hemlock/cliutil"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/eval"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		jsonOutput  = flag.Bool("json", false, "output version in JSON format")
		verbose     = flag.Bool("verbose", false, "enable verbose logging")
		watchPath   = flag.String("watch", "", "re-run the script whenever this path changes")
		bundleEntry = flag.String("bundle", "", "build a bundle artifact from this entry script")
		outPath     = flag.String("o", "", "bundle output path (with --bundle)")
		compress    = flag.Bool("compress", false, "compress the bundle artifact (with --bundle)")
	)

	flag.Usage = func() { cliutil.PrintUsage() }
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		cliutil.PrintVersion("hemlock", *jsonOutput)
		os.Exit(0)
	}

	logger := cliutil.NewLogger(*verbose, false)

	if *bundleEntry != "" {
		runBundle(*bundleEntry, *outPath, *compress, logger)
		return
	}

	args := flag.Args()
	if err := cliutil.ValidateArgs(args, 1, "hemlock <script>"); err != nil {
		cliutil.HandleError(err, logger)
	}
	scriptPath := args[0]

	installSignalForwarding()

	if *watchPath != "" {
		runWatching(scriptPath, *watchPath, args[1:], logger)
		return
	}

	runScript(scriptPath, args[1:], logger, true)
}

// runScript reads, pre-passes, and evaluates scriptPath. When fatal is true
// (the plain `hemlock <script>` path) any failure exits the process; under
// --watch, fatal is false so a bad reload reports through logger and leaves
// the watch loop running.
func runScript(scriptPath string, scriptArgs []string, logger *cliutil.Logger, fatal bool) {
	fail := func(format string, args ...interface{}) {
		if fatal {
			cliutil.ExitWithError(format, args...)
		} else {
			logger.Error(format, args...)
		}
	}

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		fail("failed to read %q: %v", scriptPath, err)
		return
	}

	stmts, err := cliutil.ParseSource(string(source), scriptPath)
	if err != nil {
		fail("%v", err)
		return
	}

	ev := eval.New()
	ev.FFI = cliutil.NewFFIBridge(ev)
	root := ev.NewGlobalEnv(scriptArgs)
	defer env.TeardownTopLevel(root)

	if err := cliutil.RunModulePrepass(ev, root, stmts); err != nil {
		fail("%v", err)
		return
	}

	logger.Debug("evaluating %q (%d top-level statements)", scriptPath, len(stmts))
	if err := ev.EvalProgram(stmts, root); err != nil {
		if thrown, ok := err.(*diagnostics.Thrown); ok && fatal {
			diagnostics.ReportUncaught(thrown) // terminates the process itself
		}
		fail("%v", err)
	}
}

func runWatching(scriptPath, watchPath string, scriptArgs []string, logger *cliutil.Logger) {
	watcher, err := cliutil.NewScriptWatcher(watchPath)
	if err != nil {
		cliutil.ExitWithError("failed to watch %q: %v", watchPath, err)
	}
	defer watcher.Close()

	run := func() {
		logger.Info("running %q", scriptPath)
		runRecovered(scriptPath, scriptArgs, logger)
	}
	run()

	for {
		select {
		case <-watcher.Events:
			logger.Info("change detected under %q, re-running", watchPath)
			run()
		case err := <-watcher.Errors:
			logger.Warn("watch error: %v", err)
		}
	}
}

// runRecovered runs the script non-fatally, recovering a Go panic so a
// single bad reload under --watch does not kill the watch loop itself.
func runRecovered(scriptPath string, scriptArgs []string, logger *cliutil.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("script run panicked: %v", r)
		}
	}()
	runScript(scriptPath, scriptArgs, logger, false)
}

func runBundle(entry, outPath string, compress bool, logger *cliutil.Logger) {
	if outPath == "" {
		cliutil.ExitWithError("--bundle requires -o <output path>")
	}
	source, err := os.ReadFile(entry)
	if err != nil {
		cliutil.ExitWithError("failed to read entry %q: %v", entry, err)
	}
	// Resolving the entry's module graph into one payload is the out-of-scope
	// bundler/resolver's job (spec.md §1); here the entry is treated as
	// already-complete, matching a single-file program.
	if err := cliutil.WriteBundle(outPath, entry, source, compress); err != nil {
		cliutil.ExitWithError("%v", err)
	}
	logger.Info("wrote bundle %q", outPath)
}

// installSignalForwarding terminates the process with status 130 on the
// first SIGINT or SIGTERM, the way the teacher's REPL does. It does not
// consult the evaluator's SignalTable: a handler installed through
// Hemlock's signal(num, handler) builtin is notified on its own channel and
// does not stop this exit.
func installSignalForwarding() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\ninterrupted")
		os.Exit(130)
	}()
}
