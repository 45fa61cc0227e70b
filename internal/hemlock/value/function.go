package value

// ClosureEnv is the minimal interface FunctionObj needs from an environment:
// a strong reference it retains at function-literal evaluation time and
// releases when the function is destroyed (spec.md §3 "function" lifecycle).
// Defined here (rather than importing env.Environment directly) so that
// value does not depend on env, which itself stores Values.
type ClosureEnv interface {
	Retain()
	Release()
}

// Param is one declared parameter: a name plus an optional type descriptor.
type Param struct {
	Name string
	Type *TypeDescriptor // nil when the parameter has no declared type.
}

// FunctionObj is a Hemlock function value: parameter list, optional return
// type, the async flag spawn() requires, a non-owned reference to the body
// AST (owned by the program AST — the out-of-scope parser's concern,
// referenced here only as `any` so value need not depend on the AST
// package), and a strong reference to the enclosing (closure) environment.
type FunctionObj struct {
	hdr        Header
	Name       string
	Params     []Param
	ReturnType *TypeDescriptor
	IsAsync    bool
	Body       any
	Closure    ClosureEnv
}

func NewFunction(name string, params []Param, ret *TypeDescriptor, isAsync bool, body any, closure ClosureEnv) Value {
	closure.Retain()
	f := &FunctionObj{
		hdr:        *NewHeader(),
		Name:       name,
		Params:     params,
		ReturnType: ret,
		IsAsync:    isAsync,
		Body:       body,
		Closure:    closure,
	}
	return FromHeap(TagFunction, f)
}

func (f *FunctionObj) Header() *Header { return &f.hdr }
func (f *FunctionObj) Kind() Kind      { return KindFunction }

func (f *FunctionObj) ReleaseChildren() {
	if f.Closure != nil {
		f.Closure.Release()
		f.Closure = nil
	}
}

func AsFunction(v Value) *FunctionObj {
	if v.Tag != TagFunction {
		return nil
	}
	fo, _ := v.Heap.(*FunctionObj)
	return fo
}
