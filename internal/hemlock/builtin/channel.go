package builtin

import (
	"github.com/hemlock-lang/hemlock/internal/hemlock/concurrency"
	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func dispatchChannel(recv value.Value, method string, args []value.Value) (value.Value, error) {
	ch := concurrency.AsChannel(recv)
	switch method {
	case "send":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		if err := ch.Send(args[0]); err != nil {
			return value.Value{}, err
		}
		return value.Null(), nil
	case "recv":
		v, err := ch.Recv()
		if err != nil {
			return value.Value{}, err
		}
		return v, nil
	case "close":
		ch.Close()
		return value.Null(), nil
	default:
		return value.Value{}, diagnostics.New(diagnostics.CategoryMethodNotFound, "method %q not found on channel", method)
	}
}
