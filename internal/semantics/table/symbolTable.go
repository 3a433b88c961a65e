package table

import (
	"errors"
	"fmt"

	"pseudo2wasm/internal/types"
)

var (
	ErrUndeclared = errors.New("undeclared")
	ErrRedeclared = errors.New("already declared")
)

// ScopeID indexes a scope in the table's arena.
type ScopeID int

// NoScope is the parent of the root scope.
const NoScope ScopeID = -1

// Param is one by-value parameter of a signature
type Param struct {
	Name string
	Type types.Type
}

// Signature describes a FUNCTION (Returns set) or PROCEDURE (Returns nil)
type Signature struct {
	Name    string
	Params  []Param
	Returns types.Type
	Builtin bool
}

// IsFunction reports whether calls produce a value.
func (s *Signature) IsFunction() bool { return s.Returns != nil }

// Scope holds the names declared in the program root or one callable body.
// Parent is an arena index, so scopes never own each other.
type Scope struct {
	ID             ScopeID
	Parent         ScopeID
	IsFunctionBody bool
	ReturnType     types.Type

	vars       map[string]types.Type
	functions  map[string]*Signature
	procedures map[string]*Signature
	typeNames  map[string]types.Type
}

func newScope(id, parent ScopeID) *Scope {
	return &Scope{
		ID:         id,
		Parent:     parent,
		vars:       make(map[string]types.Type),
		functions:  make(map[string]*Signature),
		procedures: make(map[string]*Signature),
		typeNames:  make(map[string]types.Type),
	}
}

// Var returns a variable declared directly in this scope.
func (s *Scope) Var(name string) (types.Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

// SymbolTable is the arena of scopes built by one checking run.
type SymbolTable struct {
	scopes  []*Scope
	current ScopeID
}

// NewSymbolTable creates a table holding only the program root scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		scopes:  []*Scope{newScope(0, NoScope)},
		current: 0,
	}
}

func (st *SymbolTable) Root() *Scope    { return st.scopes[0] }
func (st *SymbolTable) Current() *Scope { return st.scopes[st.current] }

// Scope returns the scope with the given ID, nil if out of range.
func (st *SymbolTable) Scope(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(st.scopes) {
		return nil
	}
	return st.scopes[id]
}

// Len is the number of scopes created so far.
func (st *SymbolTable) Len() int { return len(st.scopes) }

func (st *SymbolTable) push() *Scope {
	id := ScopeID(len(st.scopes))
	s := newScope(id, st.current)
	st.scopes = append(st.scopes, s)
	st.current = id
	return s
}

// EnterFunction opens a function body scope in which RETURN is legal.
func (st *SymbolTable) EnterFunction(returns types.Type) ScopeID {
	s := st.push()
	s.IsFunctionBody = true
	s.ReturnType = returns
	return s.ID
}

// EnterProcedure opens a procedure body scope.
func (st *SymbolTable) EnterProcedure() ScopeID {
	return st.push().ID
}

// Leave returns to the parent scope. Leaving the root is a no-op.
func (st *SymbolTable) Leave() {
	if parent := st.Current().Parent; parent != NoScope {
		st.current = parent
	}
}

// InFunctionBody reports whether RETURN is legal at this point.
func (st *SymbolTable) InFunctionBody() bool {
	return st.Current().IsFunctionBody
}

// AtRoot reports whether the current scope is the program root.
func (st *SymbolTable) AtRoot() bool {
	return st.current == 0
}

// Declare adds a variable to the current scope
func (st *SymbolTable) Declare(name string, typ types.Type) error {
	s := st.Current()
	if _, exists := s.vars[name]; exists {
		return fmt.Errorf("identifier '%s' %w", name, ErrRedeclared)
	}
	s.vars[name] = typ
	return nil
}

// Lookup finds a variable in this scope or parent scopes
func (st *SymbolTable) Lookup(name string) (types.Type, error) {
	for s := st.Current(); s != nil; s = st.Scope(s.Parent) {
		if typ, ok := s.vars[name]; ok {
			return typ, nil
		}
	}
	return nil, fmt.Errorf("%w identifier '%s'", ErrUndeclared, name)
}

// DeclareFunction adds a FUNCTION signature to the current scope.
func (st *SymbolTable) DeclareFunction(sig *Signature) error {
	s := st.Current()
	if _, exists := s.functions[sig.Name]; exists {
		return fmt.Errorf("function '%s' %w", sig.Name, ErrRedeclared)
	}
	s.functions[sig.Name] = sig
	return nil
}

// LookupFunction finds a FUNCTION signature, walking to the root.
func (st *SymbolTable) LookupFunction(name string) (*Signature, error) {
	for s := st.Current(); s != nil; s = st.Scope(s.Parent) {
		if sig, ok := s.functions[name]; ok {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("%w function '%s'", ErrUndeclared, name)
}

// DeclareProcedure adds a PROCEDURE signature to the current scope.
func (st *SymbolTable) DeclareProcedure(sig *Signature) error {
	s := st.Current()
	if _, exists := s.procedures[sig.Name]; exists {
		return fmt.Errorf("procedure '%s' %w", sig.Name, ErrRedeclared)
	}
	s.procedures[sig.Name] = sig
	return nil
}

// LookupProcedure finds a PROCEDURE signature, walking to the root.
func (st *SymbolTable) LookupProcedure(name string) (*Signature, error) {
	for s := st.Current(); s != nil; s = st.Scope(s.Parent) {
		if sig, ok := s.procedures[name]; ok {
			return sig, nil
		}
	}
	return nil, fmt.Errorf("%w procedure '%s'", ErrUndeclared, name)
}

// DeclareType binds a user TYPE name in the current scope.
func (st *SymbolTable) DeclareType(name string, typ types.Type) error {
	s := st.Current()
	if _, exists := s.typeNames[name]; exists {
		return fmt.Errorf("type '%s' %w", name, ErrRedeclared)
	}
	s.typeNames[name] = typ
	return nil
}

// LookupType resolves a user TYPE name, walking to the root.
func (st *SymbolTable) LookupType(name string) (types.Type, error) {
	for s := st.Current(); s != nil; s = st.Scope(s.Parent) {
		if typ, ok := s.typeNames[name]; ok {
			return typ, nil
		}
	}
	return nil, fmt.Errorf("%w type '%s'", ErrUndeclared, name)
}
