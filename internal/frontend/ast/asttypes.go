package ast

import "pseudo2wasm/internal/source"

// NamedType is a scalar keyword (INTEGER, REAL...) or a user TYPE name
type NamedType struct {
	Name string
	source.Location
}

func (n *NamedType) INode()                {} // Implements Node interface
func (n *NamedType) TypeExpr()             {} // Type nodes implement TypeExpr
func (n *NamedType) Loc() *source.Location { return &n.Location }

// DimensionNode is one lower:upper range of an array declaration
type DimensionNode struct {
	Lower int32
	Upper int32
}

// ArrayTypeNode represents ARRAY[l1:u1, l2:u2, ...] OF Element
type ArrayTypeNode struct {
	Element DataType
	Dims    []DimensionNode
	source.Location
}

func (a *ArrayTypeNode) INode()                {}
func (a *ArrayTypeNode) TypeExpr()             {}
func (a *ArrayTypeNode) Loc() *source.Location { return &a.Location }

// PointerTypeNode represents ^Base
type PointerTypeNode struct {
	Base DataType
	source.Location
}

func (p *PointerTypeNode) INode()                {}
func (p *PointerTypeNode) TypeExpr()             {}
func (p *PointerTypeNode) Loc() *source.Location { return &p.Location }
