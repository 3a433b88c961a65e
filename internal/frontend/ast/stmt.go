package ast

import (
	"pseudo2wasm/internal/source"
	"pseudo2wasm/internal/types"
)

// VarDecl represents DECLARE Name : DataType
type VarDecl struct {
	Name     string
	DataType DataType
	Resolved types.Type // populated during semantic analysis
	source.Location
}

func (d *VarDecl) INode()                {} // Implements Node interface
func (d *VarDecl) Stmt()                 {} // Stmt is a marker interface for all statements
func (d *VarDecl) Loc() *source.Location { return &d.Location }

// FieldDecl is one member of a record TYPE
type FieldDecl struct {
	Name     string
	DataType DataType
	source.Location
}

// TypeDecl represents either TYPE Name = Alias (e.g. ^INTEGER)
// or a record TYPE Name with Fields.
type TypeDecl struct {
	Name     string
	Alias    DataType
	Fields   []FieldDecl
	Resolved types.Type
	source.Location
}

func (d *TypeDecl) INode()                {}
func (d *TypeDecl) Stmt()                 {}
func (d *TypeDecl) Loc() *source.Location { return &d.Location }

// Param is a by-value parameter of a FUNCTION or PROCEDURE
type Param struct {
	Name     string
	DataType DataType
	Resolved types.Type
	source.Location
}

func (p *Param) Loc() *source.Location { return &p.Location }

// FuncDecl represents FUNCTION Name(Params) RETURNS Returns ... ENDFUNCTION
type FuncDecl struct {
	Name     string
	Params   []*Param
	Returns  DataType
	Body     []Statement
	Resolved types.Type // return type
	source.Location
}

func (d *FuncDecl) INode()                {}
func (d *FuncDecl) Stmt()                 {}
func (d *FuncDecl) Loc() *source.Location { return &d.Location }

// ProcDecl represents PROCEDURE Name(Params) ... ENDPROCEDURE
type ProcDecl struct {
	Name   string
	Params []*Param
	Body   []Statement
	source.Location
}

func (d *ProcDecl) INode()                {}
func (d *ProcDecl) Stmt()                 {}
func (d *ProcDecl) Loc() *source.Location { return &d.Location }

// AssignStmt represents Target <- Value
type AssignStmt struct {
	Target Expression
	Value  Expression
	source.Location
}

func (s *AssignStmt) INode()                {}
func (s *AssignStmt) Stmt()                 {}
func (s *AssignStmt) Loc() *source.Location { return &s.Location }

// IfStmt represents IF Cond THEN ... [ELSE ...] ENDIF
type IfStmt struct {
	Cond Expression
	Then []Statement
	Else []Statement
	source.Location
}

func (s *IfStmt) INode()                {}
func (s *IfStmt) Stmt()                 {}
func (s *IfStmt) Loc() *source.Location { return &s.Location }

// WhileStmt represents WHILE Cond ... ENDWHILE
type WhileStmt struct {
	Cond Expression
	Body []Statement
	source.Location
}

func (s *WhileStmt) INode()                {}
func (s *WhileStmt) Stmt()                 {}
func (s *WhileStmt) Loc() *source.Location { return &s.Location }

// RepeatStmt represents REPEAT ... UNTIL Cond
type RepeatStmt struct {
	Body []Statement
	Cond Expression
	source.Location
}

func (s *RepeatStmt) INode()                {}
func (s *RepeatStmt) Stmt()                 {}
func (s *RepeatStmt) Loc() *source.Location { return &s.Location }

// ForStmt represents FOR Var <- From TO To [STEP Step] ... NEXT Var.
// A nil Step means STEP 1.
type ForStmt struct {
	Var  *IdentifierExpr
	From Expression
	To   Expression
	Step Expression
	Body []Statement
	source.Location
}

func (s *ForStmt) INode()                {}
func (s *ForStmt) Stmt()                 {}
func (s *ForStmt) Loc() *source.Location { return &s.Location }

// CallStmt represents CALL Callee(Args)
type CallStmt struct {
	Callee string
	Args   []Expression
	source.Location
}

func (s *CallStmt) INode()                {}
func (s *CallStmt) Stmt()                 {}
func (s *CallStmt) Loc() *source.Location { return &s.Location }

// ReturnStmt represents RETURN Value
type ReturnStmt struct {
	Value Expression
	source.Location
}

func (s *ReturnStmt) INode()                {}
func (s *ReturnStmt) Stmt()                 {}
func (s *ReturnStmt) Loc() *source.Location { return &s.Location }

// OutputStmt represents OUTPUT v1, v2, ...
type OutputStmt struct {
	Values []Expression
	source.Location
}

func (s *OutputStmt) INode()                {}
func (s *OutputStmt) Stmt()                 {}
func (s *OutputStmt) Loc() *source.Location { return &s.Location }

// InputStmt represents INPUT Target
type InputStmt struct {
	Target Expression
	source.Location
}

func (s *InputStmt) INode()                {}
func (s *InputStmt) Stmt()                 {}
func (s *InputStmt) Loc() *source.Location { return &s.Location }
