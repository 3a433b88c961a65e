package types

import (
	"fmt"
	"math"
)

// TypeError reports a type query applied to a type that does not support it.
type TypeError struct {
	Op   string
	Type Type
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Op, e.Type, e.Msg)
}

// AsBasic unwraps a scalar type.
func AsBasic(t Type) (*BasicType, bool) {
	b, ok := t.(*BasicType)
	return b, ok
}

// IsKind reports whether t is the scalar type of the given kind.
func IsKind(t Type, kind BasicKind) bool {
	b, ok := t.(*BasicType)
	return ok && b.Kind == kind
}

// ElementType returns the element type of an array.
func ElementType(t Type) (Type, error) {
	if arr, ok := t.(*ArrayType); ok {
		return arr.Element, nil
	}
	return nil, &TypeError{Op: "element type", Type: t, Msg: "is not an ARRAY"}
}

// FieldType returns the type of a record field.
func FieldType(t Type, name string) (Type, error) {
	field, _, err := lookupField(t, name)
	if err != nil {
		return nil, err
	}
	return field.Type, nil
}

// FieldOffset returns the byte offset of a record field, the sum of the
// sizes of the fields declared before it.
func FieldOffset(t Type, name string) (uint32, error) {
	_, offset, err := lookupField(t, name)
	return offset, err
}

func lookupField(t Type, name string) (Field, uint32, error) {
	rec, ok := t.(*RecordType)
	if !ok {
		return Field{}, 0, &TypeError{Op: "field type", Type: t, Msg: "is not a RECORD"}
	}
	field, offset, ok := rec.Field(name)
	if !ok {
		return Field{}, 0, &TypeError{Op: "field type", Type: t, Msg: fmt.Sprintf("has no field '%s'", name)}
	}
	return field, offset, nil
}

func integral(k BasicKind) bool {
	return k == INTEGER || k == CHAR || k == BOOLEAN
}

// MinimalCompatibleType returns the narrowest scalar kind both operands
// promote to. INTEGER, CHAR and BOOLEAN meet at INTEGER; INTEGER and REAL
// meet at REAL; CHAR and BOOLEAN never reach REAL. STRING meets only STRING
// or CHAR, at STRING.
func MinimalCompatibleType(a, b BasicKind) (BasicKind, bool) {
	switch {
	case integral(a) && integral(b):
		return INTEGER, true
	case a == REAL && (b == REAL || b == INTEGER):
		return REAL, true
	case b == REAL && a == INTEGER:
		return REAL, true
	case a == STRING && (b == STRING || b == CHAR):
		return STRING, true
	case b == STRING && a == CHAR:
		return STRING, true
	}
	return 0, false
}

// Assignable reports whether a value of kind from can be stored into a
// slot of kind to, converting if needed. STRING and BOOLEAN slots only take
// their own kind.
func Assignable(from, to BasicKind) bool {
	if from == STRING || to == STRING || to == BOOLEAN {
		return from == to
	}
	_, ok := MinimalCompatibleType(from, to)
	return ok
}

// MaxSize bounds the bytes of one type and of each storage area, so every
// address fits a signed i32 constant.
const MaxSize = math.MaxInt32

// CheckSize fails with a *TypeError when t needs more than MaxSize bytes.
func CheckSize(t Type) error {
	if _, ok := wideSize(t); !ok {
		return &TypeError{Op: "size", Type: t, Msg: fmt.Sprintf("needs more than %d bytes", MaxSize)}
	}
	return nil
}

// wideSize is Size computed in 64 bits; it stops once MaxSize is passed.
func wideSize(t Type) (uint64, bool) {
	switch t := t.(type) {
	case *ArrayType:
		n, ok := wideSize(t.Element)
		if !ok {
			return 0, false
		}
		for _, d := range t.Dims {
			if d.Upper < d.Lower {
				return 0, true
			}
			n *= uint64(int64(d.Upper) - int64(d.Lower) + 1)
			if n > MaxSize {
				return 0, false
			}
		}
		return n, true
	case *RecordType:
		var total uint64
		for _, f := range t.Fields {
			n, ok := wideSize(f.Type)
			if !ok {
				return 0, false
			}
			if total += n; total > MaxSize {
				return 0, false
			}
		}
		return total, true
	}
	return uint64(t.Size()), true
}
