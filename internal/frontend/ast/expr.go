package ast

import (
	"pseudo2wasm/internal/source"
	"pseudo2wasm/internal/types"
)

// IntegerLit represents an INTEGER literal
type IntegerLit struct {
	Value int32
	Type  types.Type // type information (populated during semantic analysis)
	source.Location
}

func (l *IntegerLit) INode()                {} // Implements Node interface
func (l *IntegerLit) Expr()                 {} // Expr is a marker interface for all expressions
func (l *IntegerLit) Loc() *source.Location { return &l.Location }

// RealLit represents a REAL literal
type RealLit struct {
	Value float64
	Type  types.Type
	source.Location
}

func (l *RealLit) INode()                {}
func (l *RealLit) Expr()                 {}
func (l *RealLit) Loc() *source.Location { return &l.Location }

// CharLit represents a CHAR literal
type CharLit struct {
	Value rune
	Type  types.Type
	source.Location
}

func (l *CharLit) INode()                {}
func (l *CharLit) Expr()                 {}
func (l *CharLit) Loc() *source.Location { return &l.Location }

// StringLit represents a STRING literal
type StringLit struct {
	Value string
	Type  types.Type
	source.Location
}

func (l *StringLit) INode()                {}
func (l *StringLit) Expr()                 {}
func (l *StringLit) Loc() *source.Location { return &l.Location }

// BooleanLit represents TRUE or FALSE
type BooleanLit struct {
	Value bool
	Type  types.Type
	source.Location
}

func (l *BooleanLit) INode()                {}
func (l *BooleanLit) Expr()                 {}
func (l *BooleanLit) Loc() *source.Location { return &l.Location }

// IdentifierExpr represents a variable reference
type IdentifierExpr struct {
	Name string
	Type types.Type // type information (populated during semantic analysis, from the scope)
	source.Location
}

func (i *IdentifierExpr) INode()                {}
func (i *IdentifierExpr) Expr()                 {}
func (i *IdentifierExpr) Loc() *source.Location { return &i.Location }

// IndexExpr represents arr[i, j, ...]
type IndexExpr struct {
	X       Expression
	Indices []Expression
	Type    types.Type
	source.Location
}

func (i *IndexExpr) INode()                {}
func (i *IndexExpr) Expr()                 {}
func (i *IndexExpr) Loc() *source.Location { return &i.Location }

// SelectExpr represents record.field
type SelectExpr struct {
	X     Expression
	Field string
	Type  types.Type
	source.Location
}

func (s *SelectExpr) INode()                {}
func (s *SelectExpr) Expr()                 {}
func (s *SelectExpr) Loc() *source.Location { return &s.Location }

// DerefExpr represents p^
type DerefExpr struct {
	X    Expression
	Type types.Type
	source.Location
}

func (d *DerefExpr) INode()                {}
func (d *DerefExpr) Expr()                 {}
func (d *DerefExpr) Loc() *source.Location { return &d.Location }

// AddressExpr represents ^x
type AddressExpr struct {
	X    Expression
	Type types.Type
	source.Location
}

func (a *AddressExpr) INode()                {}
func (a *AddressExpr) Expr()                 {}
func (a *AddressExpr) Loc() *source.Location { return &a.Location }

// UnaryExpr represents a unary expression
type UnaryExpr struct {
	Op   Operator   // operator
	X    Expression // operand
	Type types.Type
	source.Location
}

func (u *UnaryExpr) INode()                {}
func (u *UnaryExpr) Expr()                 {}
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	X    Expression // left operand
	Op   Operator   // operator
	Y    Expression // right operand
	Type types.Type
	source.Location
}

func (b *BinaryExpr) INode()                {}
func (b *BinaryExpr) Expr()                 {}
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// CallExpr represents a FUNCTION call used as a value
type CallExpr struct {
	Callee string
	Args   []Expression
	Type   types.Type
	source.Location
}

func (c *CallExpr) INode()                {}
func (c *CallExpr) Expr()                 {}
func (c *CallExpr) Loc() *source.Location { return &c.Location }

// CastExpr is an implicit conversion inserted by the checker.
// Type is the target type.
type CastExpr struct {
	X    Expression
	Type types.Type
	source.Location
}

func (c *CastExpr) INode()                {}
func (c *CastExpr) Expr()                 {}
func (c *CastExpr) Loc() *source.Location { return &c.Location }
