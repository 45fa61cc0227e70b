package builtin

import "github.com/hemlock-lang/hemlock/internal/hemlock/value"

// dispatchBuffer exists for symmetry with the other handle types, though
// spec.md §4.7 gives buffers no methods beyond the `length`/`capacity`
// property access and byte indexing eval handles directly; any call here is
// therefore always a method-not-found error.
func dispatchBuffer(recv value.Value, method string, args []value.Value) (value.Value, error) {
	return value.Value{}, methodNotFound(recv, method)
}
