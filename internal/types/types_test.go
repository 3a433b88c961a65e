package types

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestBasicTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeInteger, "INTEGER"},
		{TypeReal, "REAL"},
		{TypeChar, "CHAR"},
		{TypeString, "STRING"},
		{TypeBoolean, "BOOLEAN"},
		{NewPointer(TypeInteger), "^INTEGER"},
		{NewArray(TypeReal, Dimension{1, 3}, Dimension{0, 4}), "ARRAY[1:3, 0:4] OF REAL"},
		{NewRecord("", Field{"x", TypeInteger}), "RECORD(x: INTEGER)"},
		{NewRecord("point", Field{"x", TypeInteger}), "point"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBasicTypeSize(t *testing.T) {
	tests := []struct {
		typ  Type
		want uint32
	}{
		{TypeInteger, 4},
		{TypeReal, 8},
		{TypeChar, 4},
		{TypeString, 4},
		{TypeBoolean, 4},
		{NewPointer(TypeReal), 4},
		{TypeNone, 0},
	}

	for _, tt := range tests {
		if got := tt.typ.Size(); got != tt.want {
			t.Errorf("%s.Size() = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestArraySize(t *testing.T) {
	tests := []struct {
		name string
		typ  *ArrayType
		want uint32
	}{
		{"one dimension", NewArray(TypeInteger, Dimension{1, 10}), 40},
		{"non-zero lower bound", NewArray(TypeReal, Dimension{5, 7}), 24},
		{"two dimensions", NewArray(TypeInteger, Dimension{1, 3}, Dimension{0, 4}), 4 * 3 * 5},
		{"negative bounds", NewArray(TypeChar, Dimension{-2, 2}), 20},
		{"empty range", NewArray(TypeInteger, Dimension{3, 1}), 0},
		{
			"array of arrays",
			NewArray(NewArray(TypeReal, Dimension{1, 2}), Dimension{1, 3}),
			8 * 2 * 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.typ.Size(), tt.want)
		})
	}
}

func TestArraySectionSizes(t *testing.T) {
	arr := NewArray(TypeInteger, Dimension{1, 2}, Dimension{0, 3}, Dimension{1, 5})
	be.Equal(t, arr.SectionSizes(), []uint32{20, 5, 1})
	be.Equal(t, arr.Count(), uint32(40))
}

func TestRecordSizeAndOffsets(t *testing.T) {
	one := NewRecord("one", Field{"x", TypeInteger})
	two := NewRecord("two",
		Field{"a", TypeInteger},
		Field{"r", TypeReal},
		Field{"c", one},
		Field{"arr", NewArray(one, Dimension{1, 3})},
	)

	be.Equal(t, one.Size(), uint32(4))
	be.Equal(t, two.Size(), uint32(4+8+4+12))

	offsets := map[string]uint32{"a": 0, "r": 4, "c": 12, "arr": 16}
	for name, want := range offsets {
		got, err := FieldOffset(two, name)
		be.Err(t, err, nil)
		be.Equal(t, got, want)
	}

	typ, err := FieldType(two, "c")
	be.Err(t, err, nil)
	be.True(t, typ.Equals(one))
}

func TestTypeQueriesMisapplied(t *testing.T) {
	_, err := ElementType(TypeInteger)
	be.Err(t, err, "is not an ARRAY")

	_, err = FieldType(NewArray(TypeInteger, Dimension{1, 2}), "x")
	be.Err(t, err, "is not a RECORD")

	_, err = FieldOffset(NewRecord("p", Field{"x", TypeInteger}), "y")
	be.Err(t, err, "has no field 'y'")

	var typeErr *TypeError
	_, err = ElementType(TypeReal)
	if !errors.As(err, &typeErr) {
		t.Fatalf("ElementType error = %v, want *TypeError", err)
	}
	be.Equal(t, typeErr.Op, "element type")
}

func TestTypeEquals(t *testing.T) {
	tests := []struct {
		t1, t2 Type
		equal  bool
	}{
		{TypeInteger, TypeInteger, true},
		{TypeInteger, TypeReal, false},
		{NewPointer(TypeInteger), NewPointer(TypeInteger), true},
		{NewPointer(TypeInteger), NewPointer(TypeChar), false},
		{NewArray(TypeInteger, Dimension{1, 3}), NewArray(TypeInteger, Dimension{1, 3}), true},
		{NewArray(TypeInteger, Dimension{1, 3}), NewArray(TypeInteger, Dimension{0, 2}), false},
		{NewRecord("a", Field{"x", TypeInteger}), NewRecord("b", Field{"x", TypeInteger}), false},
		{NewRecord("", Field{"x", TypeInteger}), NewRecord("b", Field{"x", TypeInteger}), true},
		{TypeNone, TypeNone, true},
	}

	for _, tt := range tests {
		if got := tt.t1.Equals(tt.t2); got != tt.equal {
			t.Errorf("%s.Equals(%s) = %v, want %v", tt.t1, tt.t2, got, tt.equal)
		}
	}
}

func TestMinimalCompatibleType(t *testing.T) {
	type result struct {
		kind BasicKind
		ok   bool
	}
	want := map[[2]BasicKind]result{
		{INTEGER, INTEGER}: {INTEGER, true},
		{INTEGER, REAL}:    {REAL, true},
		{INTEGER, CHAR}:    {INTEGER, true},
		{INTEGER, BOOLEAN}: {INTEGER, true},
		{REAL, INTEGER}:    {REAL, true},
		{REAL, REAL}:       {REAL, true},
		{CHAR, INTEGER}:    {INTEGER, true},
		{CHAR, CHAR}:       {INTEGER, true},
		{CHAR, BOOLEAN}:    {INTEGER, true},
		{CHAR, STRING}:     {STRING, true},
		{STRING, CHAR}:     {STRING, true},
		{STRING, STRING}:   {STRING, true},
		{BOOLEAN, INTEGER}: {INTEGER, true},
		{BOOLEAN, CHAR}:    {INTEGER, true},
		{BOOLEAN, BOOLEAN}: {INTEGER, true},
	}

	for _, a := range BasicKinds {
		for _, b := range BasicKinds {
			kind, ok := MinimalCompatibleType(a, b)
			w := want[[2]BasicKind{a, b}]
			if ok != w.ok || (ok && kind != w.kind) {
				t.Errorf("MinimalCompatibleType(%s, %s) = (%s, %v), want (%s, %v)", a, b, kind, ok, w.kind, w.ok)
			}
		}
	}
}

func TestAssignable(t *testing.T) {
	be.True(t, Assignable(INTEGER, REAL))
	be.True(t, Assignable(REAL, INTEGER))
	be.True(t, Assignable(CHAR, INTEGER))
	be.True(t, Assignable(STRING, STRING))
	be.True(t, !Assignable(CHAR, STRING))
	be.True(t, !Assignable(STRING, CHAR))
	be.True(t, !Assignable(REAL, CHAR))
	be.True(t, !Assignable(BOOLEAN, REAL))
	be.True(t, Assignable(BOOLEAN, INTEGER))
	be.True(t, Assignable(BOOLEAN, BOOLEAN))
	be.True(t, !Assignable(INTEGER, BOOLEAN))
	be.True(t, !Assignable(CHAR, BOOLEAN))
}

func TestCheckSize(t *testing.T) {
	wordArray := func(lower, upper int32) Type {
		return NewArray(TypeInteger, Dimension{Lower: lower, Upper: upper})
	}
	tests := []struct {
		name string
		typ  Type
		ok   bool
	}{
		{"scalar", TypeReal, true},
		{"largest word array", wordArray(0, 536870910), true},
		{"four gigabytes of words", wordArray(0, 1073741823), false},
		{"whole int32 index range", NewArray(TypeChar, Dimension{Lower: -2147483648, Upper: 2147483647}), false},
		{"nested dimensions", NewArray(NewArray(TypeChar, Dimension{Lower: 1, Upper: 65536}), Dimension{Lower: 1, Upper: 65536}), false},
		{"record of two large arrays", NewRecord("Big",
			Field{Name: "a", Type: wordArray(1, 300000000)},
			Field{Name: "b", Type: wordArray(1, 300000000)}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSize(tt.typ)
			if tt.ok {
				be.Err(t, err, nil)
				return
			}
			be.Err(t, err, "needs more than 2147483647 bytes")
			var typeErr *TypeError
			be.True(t, errors.As(err, &typeErr))
		})
	}
}
