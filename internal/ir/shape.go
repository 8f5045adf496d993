package ir

// Shape is a closed variant over the structural kinds a parameter or
// property can have. Cast generation switches exhaustively on Kind so every
// conversion path is explicit.

// ShapeKind discriminates the Shape variant.
type ShapeKind int

const (
	KindPrimitive ShapeKind = iota
	KindReference
	KindEnum
	KindArray
)

// Primitive names one of the recognized primitive kinds.
type Primitive string

const (
	PrimBoolean  Primitive = "boolean"
	PrimDate     Primitive = "date"
	PrimDateTime Primitive = "datetime"
	PrimDouble   Primitive = "double"
	PrimFloat    Primitive = "float"
	PrimNumber   Primitive = "number"
	PrimInteger  Primitive = "integer"
	PrimLong     Primitive = "long"
	PrimString   Primitive = "string"
	PrimNull     Primitive = "null"
	PrimUntyped  Primitive = "untyped"
)

// Shape describes one field's structure. Exactly one of Primitive, Ref or
// Elem is meaningful depending on Kind; Ref carries the referenced type or
// enum name.
type Shape struct {
	Kind      ShapeKind
	Primitive Primitive
	Ref       string
	Elem      *Shape
}

// PrimitiveShape returns a primitive-kind shape.
func PrimitiveShape(p Primitive) Shape {
	return Shape{Kind: KindPrimitive, Primitive: p}
}

// ReferenceShape returns a shape referencing a declared type.
func ReferenceShape(name string) Shape {
	return Shape{Kind: KindReference, Ref: name}
}

// EnumShape returns a shape referencing a declared enum.
func EnumShape(name string) Shape {
	return Shape{Kind: KindEnum, Ref: name}
}

// ArrayShape returns an array shape over the given element shape.
func ArrayShape(elem Shape) Shape {
	return Shape{Kind: KindArray, Elem: &elem}
}

// knownPrimitives maps the spelling accepted in source documents to the
// canonical primitive kind.
var knownPrimitives = map[string]Primitive{
	"boolean":   PrimBoolean,
	"bool":      PrimBoolean,
	"date":      PrimDate,
	"datetime":  PrimDateTime,
	"date-time": PrimDateTime,
	"double":    PrimDouble,
	"float":     PrimFloat,
	"number":    PrimNumber,
	"integer":   PrimInteger,
	"int":       PrimInteger,
	"long":      PrimLong,
	"string":    PrimString,
	"null":      PrimNull,
	"untyped":   PrimUntyped,
	"any":       PrimUntyped,
	"":          PrimUntyped,
}

// LookupPrimitive resolves a source-document type name to a primitive kind.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := knownPrimitives[name]
	return p, ok
}
