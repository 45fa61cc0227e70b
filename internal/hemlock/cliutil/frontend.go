package cliutil

import (
	"fmt"

	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
)

// Frontend turns Hemlock source text into the statement list the evaluator
// consumes. The lexer/parser is an out-of-scope collaborator (spec.md §1):
// this seam is where a real one plugs in. ParseSource defaults to a stub
// that reports the frontend is not included in this build, mirroring how
// eval.FFIInvoker/LibraryHandle seam off the not-yet-wired FFI runtime.
var ParseSource = func(source, filename string) ([]astiface.Stmt, error) {
	return nil, fmt.Errorf("no Hemlock frontend (lexer/parser) is wired into this build for %q; the language core consumes an astiface.Stmt list produced externally", filename)
}
