package value

import "os"

// FileObj wraps an OS file handle with the path/mode/closed metadata
// `obj.field` access exposes (spec.md §4.4). File handles are not
// thread-safe (spec.md §5); concurrent use from two tasks is the caller's
// problem.
type FileObj struct {
	hdr    Header
	File   *os.File
	Path   string
	Mode   string
	Closed bool
}

func NewFile(f *os.File, path, mode string) Value {
	fo := &FileObj{hdr: *NewHeader(), File: f, Path: path, Mode: mode}
	return FromHeap(TagFile, fo)
}

func (f *FileObj) Header() *Header { return &f.hdr }
func (f *FileObj) Kind() Kind      { return KindFile }

func (f *FileObj) ReleaseChildren() {
	if !f.Closed && f.File != nil {
		f.File.Close()
		f.Closed = true
	}
}

func AsFile(v Value) *FileObj {
	if v.Tag != TagFile {
		return nil
	}
	fo, _ := v.Heap.(*FileObj)
	return fo
}
