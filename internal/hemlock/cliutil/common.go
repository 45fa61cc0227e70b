// Package cliutil implements the ambient CLI layer shared by cmd/hemlock:
// version/usage rendering, structured logging, flag-driven configuration,
// and exit-code conventions.
//
// Grounded directly on the teacher's internal/cli/common.go, renamed from
// Orizon's multi-tool-suite shape to Hemlock's single `hemlock` driver.
package cliutil

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"
)

const (
	Version   = "0.1.0"
	BuildDate = "2026-07-30"
	CommitSHA = "unknown"
)

// VersionInfo is the structured version/build report `hemlock --version`
// renders, in either plain-text or JSON form.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func PrintVersion(toolName string, jsonOutput bool) {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal version info to JSON: %v\n", err)
			jsonOutput = false
		} else {
			fmt.Println(string(data))
			return
		}
	}

	fmt.Printf("%s v%s\n", toolName, info.Version)
	fmt.Printf("Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Printf("Commit: %s\n", info.CommitSHA)
	}
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform: %s/%s\n", info.Platform, info.Arch)
}

func ExitWithError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Logger is structured CLI-facing logging, independent of program output on
// stdout (print() writes there; diagnostics go here).
type Logger struct {
	Verbose   bool
	DebugMode bool
}

func NewLogger(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, DebugMode: debug}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.DebugMode {
		fmt.Fprintf(os.Stderr, "[DEBUG] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// ValidateArgs reports an error if args is shorter than minArgs, describing
// usage for the caller to print.
func ValidateArgs(args []string, minArgs int, usage string) error {
	if len(args) < minArgs {
		return fmt.Errorf("insufficient arguments\nUsage: %s", usage)
	}
	return nil
}

func HandleError(err error, logger *Logger) {
	if err == nil {
		return
	}
	if logger != nil {
		logger.Error("%v", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func PrintUsage() {
	fmt.Printf("hemlock - the Hemlock scripting language\n\n")
	fmt.Printf("USAGE:\n")
	fmt.Printf("    hemlock <script>                     Run a Hemlock source file\n")
	fmt.Printf("    hemlock --bundle <entry> -o <out>    Build a bundle artifact\n\n")
	fmt.Printf("OPTIONS:\n")
	fmt.Printf("    --watch <path>   re-run the script whenever path changes\n")
	fmt.Printf("    --compress       compress the bundle artifact (with --bundle)\n")
	fmt.Printf("    --verbose        enable verbose logging\n")
	fmt.Printf("    --help, -h       show this help\n")
	fmt.Printf("    --version        show version information\n")
	fmt.Printf("    --json           output version information as JSON\n")
}
