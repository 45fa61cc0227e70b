package value

// TypeDescriptor names either one of the ten numeric/primitive kinds or a
// duck-typed object shape registered via `define Name { fields… }`
// (spec.md §4.3). Function/array/string/bool/ptr/buffer annotations use a
// primitive TypeDescriptor; object annotations carry the ordered field list.
type TypeDescriptor struct {
	Name      string
	Primitive Tag
	IsObject  bool
	Fields    []FieldDescriptor
}

// FieldDescriptor is one member of a duck-typed object shape. Default holds
// the out-of-scope parser's default-expression AST node (evaluated by the
// coercion layer in the validation environment when the field is absent);
// it is untyped here so that value does not depend on the AST package.
type FieldDescriptor struct {
	Name     string
	Type     *TypeDescriptor
	Optional bool
	Default  any
}

// Primitive returns the TypeDescriptor naming a primitive numeric/scalar
// tag, used by `let x: u8 = …` style annotations.
func Primitive(tag Tag) *TypeDescriptor {
	return &TypeDescriptor{Name: tag.TypeName(), Primitive: tag}
}

// ObjectType returns the TypeDescriptor registered by a `define` statement.
func ObjectType(name string, fields []FieldDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Name: name, IsObject: true, Fields: fields}
}
