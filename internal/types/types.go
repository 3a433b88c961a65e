package types

import (
	"fmt"
	"strings"
)

// Type is the semantic representation of pseudocode types.
//
// Types are immutable after creation and every type has a deterministic
// byte size in linear memory.
type Type interface {
	// String returns the pseudocode spelling of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other Type) bool

	// Size returns the size in bytes occupied in linear memory
	Size() uint32

	// isType is a marker method to prevent external implementation
	isType()
}

// BasicKind enumerates the scalar types.
type BasicKind int

const (
	INTEGER BasicKind = iota
	REAL
	CHAR
	STRING
	BOOLEAN
)

var basicNames = [...]string{
	INTEGER: "INTEGER",
	REAL:    "REAL",
	CHAR:    "CHAR",
	STRING:  "STRING",
	BOOLEAN: "BOOLEAN",
}

func (k BasicKind) String() string {
	if int(k) < 0 || int(k) >= len(basicNames) {
		return fmt.Sprintf("BasicKind(%d)", int(k))
	}
	return basicNames[k]
}

// BasicKinds lists every scalar kind in declaration order.
var BasicKinds = []BasicKind{INTEGER, REAL, CHAR, STRING, BOOLEAN}

// BasicByName resolves a scalar type keyword.
func BasicByName(name string) (*BasicType, bool) {
	switch name {
	case "INTEGER":
		return TypeInteger, true
	case "REAL":
		return TypeReal, true
	case "CHAR":
		return TypeChar, true
	case "STRING":
		return TypeString, true
	case "BOOLEAN":
		return TypeBoolean, true
	}
	return nil, false
}

// BasicType is one of INTEGER, REAL, CHAR, STRING, BOOLEAN.
// A STRING value is the address of a NUL-terminated byte run.
type BasicType struct {
	Kind BasicKind
}

var (
	TypeInteger = &BasicType{Kind: INTEGER}
	TypeReal    = &BasicType{Kind: REAL}
	TypeChar    = &BasicType{Kind: CHAR}
	TypeString  = &BasicType{Kind: STRING}
	TypeBoolean = &BasicType{Kind: BOOLEAN}

	TypeNone = &NoneType{}
)

// NewBasic returns the shared instance for a kind.
func NewBasic(kind BasicKind) *BasicType {
	switch kind {
	case REAL:
		return TypeReal
	case CHAR:
		return TypeChar
	case STRING:
		return TypeString
	case BOOLEAN:
		return TypeBoolean
	default:
		return TypeInteger
	}
}

func (b *BasicType) String() string { return b.Kind.String() }
func (b *BasicType) isType()        {}

func (b *BasicType) Size() uint32 {
	if b.Kind == REAL {
		return 8
	}
	return 4
}

func (b *BasicType) Equals(other Type) bool {
	if o, ok := other.(*BasicType); ok {
		return b.Kind == o.Kind
	}
	return false
}

// Dimension is one inclusive index range of an array.
type Dimension struct {
	Lower int32
	Upper int32
}

// Len is the element count of the dimension, 0 when the range is empty.
func (d Dimension) Len() uint32 {
	if d.Upper < d.Lower {
		return 0
	}
	return uint32(int64(d.Upper) - int64(d.Lower) + 1)
}

func (d Dimension) String() string {
	return fmt.Sprintf("%d:%d", d.Lower, d.Upper)
}

// ArrayType is a fixed multi-dimensional array laid out in row-major order.
type ArrayType struct {
	Element Type
	Dims    []Dimension
}

func NewArray(element Type, dims ...Dimension) *ArrayType {
	return &ArrayType{Element: element, Dims: dims}
}

func (a *ArrayType) String() string {
	parts := make([]string, len(a.Dims))
	for i, d := range a.Dims {
		parts[i] = d.String()
	}
	return fmt.Sprintf("ARRAY[%s] OF %s", strings.Join(parts, ", "), a.Element)
}

func (a *ArrayType) Size() uint32 {
	return a.Element.Size() * a.Count()
}

// Count is the total number of elements across all dimensions.
func (a *ArrayType) Count() uint32 {
	n := uint32(1)
	for _, d := range a.Dims {
		n *= d.Len()
	}
	return n
}

// SectionSizes returns, per dimension, the number of elements spanned by
// one step of that dimension's index.
func (a *ArrayType) SectionSizes() []uint32 {
	sections := make([]uint32, len(a.Dims))
	span := uint32(1)
	for i := len(a.Dims) - 1; i >= 0; i-- {
		sections[i] = span
		span *= a.Dims[i].Len()
	}
	return sections
}

func (a *ArrayType) isType() {}

func (a *ArrayType) Equals(other Type) bool {
	o, ok := other.(*ArrayType)
	if !ok || len(a.Dims) != len(o.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != o.Dims[i] {
			return false
		}
	}
	return a.Element.Equals(o.Element)
}

// Field is a named record member.
type Field struct {
	Name string
	Type Type
}

// RecordType is an ordered list of fields laid out back to back.
type RecordType struct {
	Name   string
	Fields []Field
}

func NewRecord(name string, fields ...Field) *RecordType {
	return &RecordType{Name: name, Fields: fields}
}

func (r *RecordType) String() string {
	if r.Name != "" {
		return r.Name
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "RECORD(" + strings.Join(parts, ", ") + ")"
}

func (r *RecordType) Size() uint32 {
	var total uint32
	for _, f := range r.Fields {
		total += f.Type.Size()
	}
	return total
}

// Field looks a member up by name and reports its byte offset.
func (r *RecordType) Field(name string) (Field, uint32, bool) {
	var offset uint32
	for _, f := range r.Fields {
		if f.Name == name {
			return f, offset, true
		}
		offset += f.Type.Size()
	}
	return Field{}, 0, false
}

func (r *RecordType) isType() {}

func (r *RecordType) Equals(other Type) bool {
	o, ok := other.(*RecordType)
	if !ok {
		return false
	}
	if r.Name != "" && o.Name != "" {
		return r.Name == o.Name
	}
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for i := range r.Fields {
		if r.Fields[i].Name != o.Fields[i].Name || !r.Fields[i].Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// PointerType holds a linear-memory address of a Base value.
type PointerType struct {
	Base Type
}

func NewPointer(base Type) *PointerType {
	return &PointerType{Base: base}
}

func (p *PointerType) String() string { return "^" + p.Base.String() }
func (p *PointerType) Size() uint32   { return 4 }
func (p *PointerType) isType()        {}

func (p *PointerType) Equals(other Type) bool {
	if o, ok := other.(*PointerType); ok {
		return p.Base.Equals(o.Base)
	}
	return false
}

// NoneType is the result of a procedure call.
type NoneType struct{}

func (n *NoneType) String() string { return "NONE" }
func (n *NoneType) Size() uint32   { return 0 }
func (n *NoneType) isType()        {}

func (n *NoneType) Equals(other Type) bool {
	_, ok := other.(*NoneType)
	return ok
}
