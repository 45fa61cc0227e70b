package eval

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/astiface"
	"github.com/hemlock-lang/hemlock/internal/hemlock/callframe"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/env"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// evalIndex implements read-indexing (spec.md §4.4): a string yields the
// rune at the given codepoint position, a buffer yields a u8 at the given
// byte offset, an array yields the stored Value.
func (ev *Evaluator) evalIndex(n *astiface.IndexExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	recv := ev.EvalExpr(n.Receiver, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	idx := ev.EvalExpr(n.Index, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	v, err := indexRead(recv, idx)
	if err != nil {
		return ev.throw(ctx, err)
	}
	return v
}

func indexRead(recv, idx value.Value) (value.Value, error) {
	i := int(idx.AsI64())
	switch recv.Tag {
	case value.TagString:
		r, ok := value.AsString(recv).RuneAt(i)
		if !ok {
			return value.Value{}, diagnostics.New(diagnostics.CategoryIndexBounds, "string index %d out of bounds", i)
		}
		return value.Rune(r), nil
	case value.TagBuffer:
		b, ok := value.AsBuffer(recv).At(i)
		if !ok {
			return value.Value{}, diagnostics.New(diagnostics.CategoryIndexBounds, "buffer index %d out of bounds", i)
		}
		return value.U8(b), nil
	case value.TagArray:
		v, ok := value.AsArray(recv).At(i)
		if !ok {
			return value.Value{}, diagnostics.New(diagnostics.CategoryIndexBounds, "array index %d out of bounds", i)
		}
		value.Retain(v)
		return v, nil
	default:
		return value.Value{}, diagnostics.New(diagnostics.CategoryMethodNotFound, "type %s is not indexable", recv.TypeOf())
	}
}

// indexWrite implements index-assign (spec.md §4.4): strings and buffers
// require an integer byte value written at the given byte offset; arrays
// accept any Value and grow, padding with null, as needed.
func indexWrite(recv, idx, val value.Value) error {
	i := int(idx.AsI64())
	switch recv.Tag {
	case value.TagString:
		if !val.Tag.IsInteger() {
			return diagnostics.New(diagnostics.CategoryCoercion, "string byte assignment requires an integer value")
		}
		if !value.AsString(recv).SetByteAt(i, byte(val.AsI64())) {
			return diagnostics.New(diagnostics.CategoryIndexBounds, "string byte index %d out of bounds", i)
		}
		return nil
	case value.TagBuffer:
		if !val.Tag.IsInteger() {
			return diagnostics.New(diagnostics.CategoryCoercion, "buffer byte assignment requires an integer value")
		}
		if !value.AsBuffer(recv).SetAt(i, byte(val.AsI64())) {
			return diagnostics.New(diagnostics.CategoryIndexBounds, "buffer index %d out of bounds", i)
		}
		return nil
	case value.TagArray:
		if !value.AsArray(recv).Set(i, val) {
			return diagnostics.New(diagnostics.CategoryIndexBounds, "array index %d is negative", i)
		}
		return nil
	default:
		return diagnostics.New(diagnostics.CategoryMethodNotFound, "type %s is not index-assignable", recv.TypeOf())
	}
}

// evalGetProperty implements `obj.field` / built-in property access
// (spec.md §4.4): object field lookup, or the fixed property set strings,
// arrays, buffers, and files expose.
func (ev *Evaluator) evalGetProperty(n *astiface.GetPropertyExpr, scope *env.Environment, ctx *callframe.ExecutionContext) value.Value {
	recv := ev.EvalExpr(n.Receiver, scope, ctx)
	if ctx.Signaling() {
		return value.Null()
	}
	v, err := getProperty(recv, n.Name)
	if err != nil {
		return ev.throw(ctx, err)
	}
	return v
}

func getProperty(recv value.Value, name string) (value.Value, error) {
	switch recv.Tag {
	case value.TagObject:
		obj := value.AsObject(recv)
		v, ok := obj.Get(name)
		if !ok {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "object has no field %q", name)
		}
		value.Retain(v)
		return v, nil
	case value.TagString:
		s := value.AsString(recv)
		switch name {
		case "length":
			return value.I64(int64(s.CodepointLen())), nil
		case "byte_length":
			return value.I64(int64(s.ByteLen())), nil
		}
	case value.TagArray:
		if name == "length" {
			return value.I64(int64(value.AsArray(recv).Len())), nil
		}
	case value.TagBuffer:
		b := value.AsBuffer(recv)
		switch name {
		case "length":
			return value.I64(int64(b.Len())), nil
		case "capacity":
			return value.I64(int64(b.Cap())), nil
		}
	case value.TagFile:
		f := value.AsFile(recv)
		switch name {
		case "path":
			return value.NewString(f.Path), nil
		case "mode":
			return value.NewString(f.Mode), nil
		case "closed":
			return value.Bool(f.Closed), nil
		}
	}
	return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "%s has no property %q", recv.TypeOf(), name)
}
