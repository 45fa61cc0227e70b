package builtin

import (
	"io"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

func dispatchFile(recv value.Value, method string, args []value.Value) (value.Value, error) {
	f := value.AsFile(recv)
	if f.Closed && method != "close" {
		return value.Value{}, diagnostics.New(diagnostics.CategoryFileIO, "operation on closed file %q", f.Path)
	}
	switch method {
	case "read_text":
		buf, err := readN(f, args)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(string(buf)), nil
	case "read_bytes":
		buf, err := readN(f, args)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBuffer(buf), nil
	case "write":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		var data []byte
		if s := value.AsString(args[0]); s != nil {
			data = s.Bytes()
		} else if b := value.AsBuffer(args[0]); b != nil {
			data = b.Bytes()
		} else {
			return value.Value{}, diagnostics.New(diagnostics.CategoryFileIO, "write expects a string or buffer")
		}
		n, err := f.File.Write(data)
		if err != nil {
			return value.Value{}, diagnostics.New(diagnostics.CategoryFileIO, "write failed: %v", err)
		}
		return value.I64(int64(n)), nil
	case "seek":
		if len(args) != 1 {
			return value.Value{}, arityError(method, 1, len(args))
		}
		off, err := f.File.Seek(int64(intArg(args[0])), io.SeekStart)
		if err != nil {
			return value.Value{}, diagnostics.New(diagnostics.CategoryFileIO, "seek failed: %v", err)
		}
		return value.I64(off), nil
	case "tell":
		off, err := f.File.Seek(0, io.SeekCurrent)
		if err != nil {
			return value.Value{}, diagnostics.New(diagnostics.CategoryFileIO, "tell failed: %v", err)
		}
		return value.I64(off), nil
	case "close":
		if !f.Closed {
			f.File.Close()
			f.Closed = true
		}
		return value.Null(), nil
	default:
		return value.Value{}, methodNotFound(recv, method)
	}
}

func readN(f *value.FileObj, args []value.Value) ([]byte, error) {
	n := -1
	if len(args) == 1 {
		n = intArg(args[0])
	}
	if n < 0 {
		data, err := io.ReadAll(f.File)
		if err != nil {
			return nil, diagnostics.New(diagnostics.CategoryFileIO, "read failed: %v", err)
		}
		return data, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(f.File, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, diagnostics.New(diagnostics.CategoryFileIO, "read failed: %v", err)
	}
	return buf[:read], nil
}
