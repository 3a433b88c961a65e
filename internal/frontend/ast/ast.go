package ast

import (
	"pseudo2wasm/internal/source"
	"pseudo2wasm/internal/types"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value
type Expression interface {
	Node
	Expr()
}

// DataType is a marker interface for type expressions.
// Types are NOT expressions - they are a separate syntactic category
type DataType interface {
	Node
	TypeExpr()
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// Program is the root of a compilation unit: the main body.
type Program struct {
	Body []Statement
	source.Location
}

func (p *Program) INode()                {} // Implements Node interface
func (p *Program) Loc() *source.Location { return &p.Location }

// Operator is the spelling of a unary or binary operator.
type Operator string

const (
	OpAdd    Operator = "+"
	OpSub    Operator = "-"
	OpMul    Operator = "*"
	OpDiv    Operator = "/"
	OpMod    Operator = "MOD"
	OpEq     Operator = "="
	OpNe     Operator = "<>"
	OpLt     Operator = "<"
	OpGt     Operator = ">"
	OpLe     Operator = "<="
	OpGe     Operator = ">="
	OpConcat Operator = "&"
	OpAnd    Operator = "AND"
	OpOr     Operator = "OR"
	OpNot    Operator = "NOT"
)

// TypeOf returns the type the checker recorded on an expression, nil before checking.
func TypeOf(e Expression) types.Type {
	switch e := e.(type) {
	case *IntegerLit:
		return e.Type
	case *RealLit:
		return e.Type
	case *CharLit:
		return e.Type
	case *StringLit:
		return e.Type
	case *BooleanLit:
		return e.Type
	case *IdentifierExpr:
		return e.Type
	case *IndexExpr:
		return e.Type
	case *SelectExpr:
		return e.Type
	case *DerefExpr:
		return e.Type
	case *AddressExpr:
		return e.Type
	case *UnaryExpr:
		return e.Type
	case *BinaryExpr:
		return e.Type
	case *CallExpr:
		return e.Type
	case *CastExpr:
		return e.Type
	}
	return nil
}

// KindName names a node kind for diagnostics.
func KindName(n Node) string {
	switch n.(type) {
	case *Program:
		return "program"
	case *IntegerLit:
		return "integer literal"
	case *RealLit:
		return "real literal"
	case *CharLit:
		return "char literal"
	case *StringLit:
		return "string literal"
	case *BooleanLit:
		return "boolean literal"
	case *IdentifierExpr:
		return "identifier"
	case *IndexExpr:
		return "index expression"
	case *SelectExpr:
		return "field selection"
	case *DerefExpr:
		return "dereference"
	case *AddressExpr:
		return "address-of"
	case *UnaryExpr:
		return "unary expression"
	case *BinaryExpr:
		return "binary expression"
	case *CallExpr:
		return "function call"
	case *CastExpr:
		return "conversion"
	case *NamedType:
		return "type name"
	case *ArrayTypeNode:
		return "array type"
	case *PointerTypeNode:
		return "pointer type"
	case *VarDecl:
		return "DECLARE"
	case *TypeDecl:
		return "TYPE"
	case *FuncDecl:
		return "FUNCTION"
	case *ProcDecl:
		return "PROCEDURE"
	case *AssignStmt:
		return "assignment"
	case *IfStmt:
		return "IF"
	case *WhileStmt:
		return "WHILE"
	case *RepeatStmt:
		return "REPEAT"
	case *ForStmt:
		return "FOR"
	case *CallStmt:
		return "CALL"
	case *ReturnStmt:
		return "RETURN"
	case *OutputStmt:
		return "OUTPUT"
	case *InputStmt:
		return "INPUT"
	}
	return "node"
}
