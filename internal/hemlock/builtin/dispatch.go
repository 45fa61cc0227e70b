// Package builtin implements the fixed method-dispatch table for calls on
// built-in handle types (spec.md §4.7): array, string, buffer, file,
// channel, and object.serialize(). Grounded on the teacher's
// internal/runtime/standard.go (its receiver-keyed builtin registration
// shape), reworked from the teacher's general-purpose stdlib registry into
// a tagged-enum-receiver switch per spec.md §9's redesign note preferring a
// per-variant method table over a string-keyed switch sprawled across one
// function.
package builtin

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// Dispatch routes a method call on a built-in handle Value to its
// implementation. Returns a CategoryMethodNotFound error if recv's tag has
// no method table or the table has no entry for method.
func Dispatch(recv value.Value, method string, args []value.Value) (value.Value, error) {
	switch recv.Tag {
	case value.TagArray:
		return dispatchArray(recv, method, args)
	case value.TagString:
		return dispatchString(recv, method, args)
	case value.TagBuffer:
		return dispatchBuffer(recv, method, args)
	case value.TagFile:
		return dispatchFile(recv, method, args)
	case value.TagChannel:
		return dispatchChannel(recv, method, args)
	case value.TagObject:
		return dispatchObject(recv, method, args)
	default:
		return value.Value{}, methodNotFound(recv, method)
	}
}

// HasMethod reports whether recv's tag carries a built-in method table at
// all, distinguishing "not a built-in handle" (eval should try field-lookup
// instead) from "handle type with no such method" (a hard error).
func HasMethod(tag value.Tag) bool {
	switch tag {
	case value.TagArray, value.TagString, value.TagBuffer, value.TagFile, value.TagChannel, value.TagObject:
		return true
	default:
		return false
	}
}

func methodNotFound(recv value.Value, method string) error {
	return diagnostics.New(diagnostics.CategoryMethodNotFound, "method %q not found on %s", method, recv.TypeOf())
}

func arityError(method string, want, got int) error {
	return diagnostics.New(diagnostics.CategoryArity, "%s expects %d argument(s), got %d", method, want, got)
}

func indexError(format string, args ...interface{}) error {
	return diagnostics.New(diagnostics.CategoryIndexBounds, format, args...)
}

func intArg(v value.Value) int {
	if v.Tag.IsInteger() {
		return int(v.AsI64())
	}
	if v.Tag.IsFloat() {
		return int(v.AsF64())
	}
	return 0
}
