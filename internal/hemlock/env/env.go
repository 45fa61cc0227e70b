// Package env implements Hemlock's lexical environment: ordered
// name→(value,const) frames with a parent link and reference-counted
// lifetime (spec.md §3, §4.2).
package env

import (
	"sync/atomic"

	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

type binding struct {
	val   value.Value
	isConst bool
}

// Environment is an ordered sequence of (name, Value, is_const) triples plus
// a parent link. Lookup scans the current frame then walks parents.
//
// Environment carries its own reference count (distinct from value.Header,
// since it is not itself a Hemlock Value) so that FunctionObj's closure
// reference and nested child environments can share ownership safely; see
// value.ClosureEnv, which Environment implements.
type Environment struct {
	parent *Environment
	names  []string
	table  map[string]*binding

	refs  int64
	freed int32
}

// New creates a root environment (no parent), typically populated with
// built-ins before the evaluator starts.
func New() *Environment {
	return &Environment{table: make(map[string]*binding), refs: 1}
}

// NewChild creates a new environment whose parent is e, retaining e for the
// child's lifetime. Used for call frames, block scopes, and each loop
// iteration's fresh scope (spec.md §4.4).
func (e *Environment) NewChild() *Environment {
	e.Retain()
	return &Environment{parent: e, table: make(map[string]*binding), refs: 1}
}

// Retain and Release implement value.ClosureEnv.
func (e *Environment) Retain() { atomic.AddInt64(&e.refs, 1) }

// Release decrements e's reference count, destroying its own bindings and
// releasing its parent when the count reaches zero. The tombstone flag
// guards re-entrant release from a cycle (a closure stored in e whose
// closure-env is e itself, directly or transitively) the same way
// value.release does (spec.md §9).
func (e *Environment) Release() {
	if atomic.LoadInt32(&e.freed) != 0 {
		return
	}
	if atomic.AddInt64(&e.refs, -1) > 0 {
		return
	}
	if !atomic.CompareAndSwapInt32(&e.freed, 0, 1) {
		return
	}
	for _, name := range e.names {
		value.Release(e.table[name].val)
	}
	e.table = nil
	e.names = nil
	if e.parent != nil {
		e.parent.Release()
		e.parent = nil
	}
}

// Parent exposes the parent link for teardown utilities (see TeardownTopLevel).
func (e *Environment) Parent() *Environment { return e.parent }

// ErrKind distinguishes the catchable environment errors from spec.md §4.2
// and §7.
type ErrKind int

const (
	ErrUndefined ErrKind = iota
	ErrDuplicate
	ErrConstAssign
)

// Error is a catchable environment error (undefined variable, duplicate
// definition, assignment to const).
type Error struct {
	Kind ErrKind
	Name string
}

func (err *Error) Error() string {
	switch err.Kind {
	case ErrUndefined:
		return "Undefined variable '" + err.Name + "'"
	case ErrDuplicate:
		return "Duplicate definition of '" + err.Name + "'"
	case ErrConstAssign:
		return "Assignment to const '" + err.Name + "'"
	default:
		return "environment error"
	}
}

// Define binds name in the current frame. It throws (returns an *Error) on a
// duplicate name in this same frame — shadowing an outer binding is fine.
func (e *Environment) Define(name string, v value.Value, isConst bool) error {
	if _, exists := e.table[name]; exists {
		return &Error{Kind: ErrDuplicate, Name: name}
	}
	value.Retain(v)
	e.table[name] = &binding{val: v, isConst: isConst}
	e.names = append(e.names, name)
	return nil
}

// Get walks e and its ancestors for name, returning a retained Value per
// spec.md §9's consistent-retain-on-return resolution of the cited source
// inconsistency.
func (e *Environment) Get(name string) (value.Value, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.table[name]; ok {
			value.Retain(b.val)
			return b.val, nil
		}
	}
	return value.Value{}, &Error{Kind: ErrUndefined, Name: name}
}

// Set walks ancestors looking for an existing binding of name. If found and
// not const, it is overwritten (old value released, new value retained).
// Assigning to a const binding throws. If name is not found anywhere, a new
// mutable binding is created in the current (innermost) frame, per spec.md
// §4.2's implicit-define-on-assign rule.
func (e *Environment) Set(name string, v value.Value) error {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.table[name]; ok {
			if b.isConst {
				return &Error{Kind: ErrConstAssign, Name: name}
			}
			value.Retain(v)
			old := b.val
			b.val = v
			value.Release(old)
			return nil
		}
	}
	value.Retain(v)
	e.table[name] = &binding{val: v}
	e.names = append(e.names, name)
	return nil
}

// Has reports whether name is bound in e or an ancestor, without retaining.
func (e *Environment) Has(name string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.table[name]; ok {
			return true
		}
	}
	return false
}

// TeardownTopLevel breaks the function/environment ownership cycle
// (spec.md §9 strategy (a)): it walks every binding in root and, for any
// function value found, explicitly releases that function's closure-env
// reference before releasing root itself. This reclaims top-level
// recursive-function cycles that pure reference counting cannot, at the
// cost of making root (and anything it transitively owned) unusable
// afterward — intended to run once, at interpreter shutdown.
func TeardownTopLevel(root *Environment) {
	for _, name := range root.names {
		b := root.table[name]
		if b == nil {
			continue
		}
		if fn := value.AsFunction(b.val); fn != nil && fn.Closure != nil {
			fn.Closure.Release()
			fn.Closure = nil
		}
	}
	root.Release()
}
