package builtin

import "github.com/hemlock-lang/hemlock/internal/hemlock/value"

func dispatchArray(recv value.Value, method string, args []value.Value) (value.Value, error) {
	arr := value.AsArray(recv)
	switch method {
	case "push":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		arr.Push(args[0])
		return value.Null(), nil
	case "pop":
		v, ok := arr.Pop()
		if !ok {
			return value.Null(), nil
		}
		return v, nil // ownership transfers to caller; eval must release eventually.
	case "shift":
		v, ok := arr.Shift()
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	case "unshift":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		arr.Unshift(args[0])
		return value.Null(), nil
	case "insert":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		if !arr.Insert(intArg(args[0]), args[1]) {
			return value.Value{}, indexError("insert index out of bounds")
		}
		return value.Null(), nil
	case "remove":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		v, ok := arr.Remove(intArg(args[0]))
		if !ok {
			return value.Value{}, indexError("remove index out of bounds")
		}
		return v, nil
	case "find":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		idx := arr.Find(func(v value.Value) bool { return value.Equal(v, args[0]) })
		return value.I32(int32(idx)), nil
	case "contains":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		return value.Bool(arr.Contains(func(v value.Value) bool { return value.Equal(v, args[0]) })), nil
	case "slice":
		if len(args) != 2 {
			return value.Value{}, arityError(method, 2, len(args))
		}
		return arr.Slice(intArg(args[0]), intArg(args[1])), nil
	case "concat":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		other := value.AsArray(args[0])
		if other == nil {
			return value.Value{}, indexError("concat argument must be an array")
		}
		return arr.Concat(other), nil
	case "reverse":
		arr.Reverse()
		value.Retain(recv)
		return recv, nil
	case "clear":
		arr.Clear()
		return value.Null(), nil
	case "first":
		v, ok := arr.First()
		if !ok {
			return value.Null(), nil
		}
		value.Retain(v)
		return v, nil
	case "last":
		v, ok := arr.Last()
		if !ok {
			return value.Null(), nil
		}
		value.Retain(v)
		return v, nil
	case "join":
		sep := ""
		if len(args) == 1 {
			if s := value.AsString(args[0]); s != nil {
				sep = s.Data()
			}
		}
		return joinArray(arr, sep), nil
	default:
		return value.Value{}, methodNotFound(recv, method)
	}
}

func joinArray(arr *value.ArrayObj, sep string) value.Value {
	out := ""
	for i, v := range arr.Values() {
		if i > 0 {
			out += sep
		}
		out += displayString(v)
	}
	return value.NewString(out)
}
