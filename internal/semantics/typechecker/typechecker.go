package typechecker

import (
	"errors"
	"fmt"

	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/semantics/table"
	"pseudo2wasm/internal/types"
)

// Checker decorates a syntax tree with types in one depth-first pass.
// The first violation stops the pass.
type Checker struct {
	table *table.SymbolTable

	// depth of IF/WHILE/REPEAT/FOR bodies around the current statement
	nested int
}

// Check resolves every declaration and expression type of prog in place
// and returns the populated symbol table.
func Check(prog *ast.Program) (*table.SymbolTable, error) {
	c := &Checker{table: table.NewSymbolTable()}
	if err := c.declareBuiltins(); err != nil {
		return nil, fmt.Errorf("typechecker: builtins: %w", err)
	}
	if err := c.checkBlock(prog.Body); err != nil {
		return nil, err
	}
	return c.table, nil
}

func (c *Checker) errorf(code string, node ast.Node, format string, args ...any) error {
	return diagnostics.NewSemanticError(code, ast.KindName(node), node.Loc(), format, args...)
}

// scopeError maps symbol table failures to semantic errors.
func (c *Checker) scopeError(node ast.Node, err error) error {
	code := diagnostics.ErrUndeclared
	if errors.Is(err, table.ErrRedeclared) {
		code = diagnostics.ErrRedeclared
	}
	return c.errorf(code, node, "%s", err.Error())
}

// checkBlock visits one statement list. TYPE declarations come first so
// signatures can name them; FUNCTION and PROCEDURE signatures are declared
// before any statement so siblings may call each other in any order.
func (c *Checker) checkBlock(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if decl, ok := stmt.(*ast.TypeDecl); ok {
			if err := c.checkTypeDecl(decl); err != nil {
				return err
			}
		}
	}

	for _, stmt := range stmts {
		var err error
		switch decl := stmt.(type) {
		case *ast.FuncDecl:
			err = c.declareFunction(decl)
		case *ast.ProcDecl:
			err = c.declareProcedure(decl)
		}
		if err != nil {
			return err
		}
	}

	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.TypeDecl); ok {
			continue
		}
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkNestedBlock(stmts []ast.Statement) error {
	c.nested++
	defer func() { c.nested-- }()
	return c.checkBlock(stmts)
}

func (c *Checker) checkStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return c.checkVarDecl(s)
	case *ast.FuncDecl:
		return c.checkFuncDecl(s)
	case *ast.ProcDecl:
		return c.checkProcDecl(s)
	case *ast.AssignStmt:
		return c.checkAssign(s)
	case *ast.IfStmt:
		if err := c.checkCondition(s, &s.Cond); err != nil {
			return err
		}
		if err := c.checkNestedBlock(s.Then); err != nil {
			return err
		}
		return c.checkNestedBlock(s.Else)
	case *ast.WhileStmt:
		if err := c.checkCondition(s, &s.Cond); err != nil {
			return err
		}
		return c.checkNestedBlock(s.Body)
	case *ast.RepeatStmt:
		if err := c.checkNestedBlock(s.Body); err != nil {
			return err
		}
		return c.checkCondition(s, &s.Cond)
	case *ast.ForStmt:
		return c.checkFor(s)
	case *ast.CallStmt:
		return c.checkCallStmt(s)
	case *ast.ReturnStmt:
		return c.checkReturn(s)
	case *ast.OutputStmt:
		return c.checkOutput(s)
	case *ast.InputStmt:
		return c.checkInput(s)
	}
	return c.errorf(diagnostics.ErrInvalidType, stmt, "unsupported statement %s", ast.KindName(stmt))
}

func (c *Checker) checkVarDecl(decl *ast.VarDecl) error {
	typ, err := c.resolveType(decl.DataType)
	if err != nil {
		return err
	}
	if err := c.table.Declare(decl.Name, typ); err != nil {
		return c.scopeError(decl, err)
	}
	decl.Resolved = typ
	return nil
}

func (c *Checker) checkTypeDecl(decl *ast.TypeDecl) error {
	var typ types.Type
	if decl.Alias != nil {
		alias, err := c.resolveType(decl.Alias)
		if err != nil {
			return err
		}
		typ = alias
	} else {
		fields := make([]types.Field, 0, len(decl.Fields))
		seen := make(map[string]bool, len(decl.Fields))
		for _, f := range decl.Fields {
			if seen[f.Name] {
				return c.errorf(diagnostics.ErrRedeclared, decl, "field '%s' already declared in record '%s'", f.Name, decl.Name)
			}
			seen[f.Name] = true
			ft, err := c.resolveType(f.DataType)
			if err != nil {
				return err
			}
			fields = append(fields, types.Field{Name: f.Name, Type: ft})
		}
		typ = types.NewRecord(decl.Name, fields...)
		if err := types.CheckSize(typ); err != nil {
			return c.errorf(diagnostics.ErrInvalidType, decl, "%s", err.Error())
		}
	}
	if err := c.table.DeclareType(decl.Name, typ); err != nil {
		return c.scopeError(decl, err)
	}
	decl.Resolved = typ
	return nil
}

// resolveType turns a syntactic type into a semantic one.
func (c *Checker) resolveType(node ast.DataType) (types.Type, error) {
	switch n := node.(type) {
	case *ast.NamedType:
		if basic, ok := types.BasicByName(n.Name); ok {
			return basic, nil
		}
		typ, err := c.table.LookupType(n.Name)
		if err != nil {
			return nil, c.scopeError(n, err)
		}
		return typ, nil
	case *ast.ArrayTypeNode:
		elem, err := c.resolveType(n.Element)
		if err != nil {
			return nil, err
		}
		dims := make([]types.Dimension, len(n.Dims))
		for i, d := range n.Dims {
			if d.Upper < d.Lower {
				return nil, c.errorf(diagnostics.ErrInvalidType, n, "array dimension %d has upper bound %d below lower bound %d", i+1, d.Upper, d.Lower)
			}
			dims[i] = types.Dimension{Lower: d.Lower, Upper: d.Upper}
		}
		arr := types.NewArray(elem, dims...)
		if err := types.CheckSize(arr); err != nil {
			return nil, c.errorf(diagnostics.ErrInvalidType, n, "%s", err.Error())
		}
		return arr, nil
	case *ast.PointerTypeNode:
		base, err := c.resolveType(n.Base)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(base), nil
	case nil:
		return nil, diagnostics.NewSemanticError(diagnostics.ErrInvalidType, "type", nil, "missing type")
	}
	return nil, c.errorf(diagnostics.ErrInvalidType, node, "unsupported type node %s", ast.KindName(node))
}

// isScalar reports whether a value of t fits a native parameter or result.
func isScalar(t types.Type) bool {
	switch t.(type) {
	case *types.BasicType, *types.PointerType:
		return true
	}
	return false
}

func (c *Checker) checkCallableLevel(node ast.Node, name string) error {
	if !c.table.AtRoot() || c.nested > 0 {
		return c.errorf(diagnostics.ErrNestedCallable, node, "'%s' must be declared at program level", name)
	}
	return nil
}

func (c *Checker) resolveParams(params []*ast.Param) ([]table.Param, error) {
	out := make([]table.Param, 0, len(params))
	for _, p := range params {
		typ, err := c.resolveType(p.DataType)
		if err != nil {
			return nil, err
		}
		if !isScalar(typ) {
			return nil, diagnostics.NewSemanticError(diagnostics.ErrInvalidType, "parameter", p.Loc(),
				"parameter '%s' has type %s; only scalar and pointer parameters are passed by value", p.Name, typ)
		}
		p.Resolved = typ
		out = append(out, table.Param{Name: p.Name, Type: typ})
	}
	return out, nil
}

func (c *Checker) declareFunction(decl *ast.FuncDecl) error {
	if err := c.checkCallableLevel(decl, decl.Name); err != nil {
		return err
	}
	params, err := c.resolveParams(decl.Params)
	if err != nil {
		return err
	}
	ret, err := c.resolveType(decl.Returns)
	if err != nil {
		return err
	}
	if !isScalar(ret) {
		return c.errorf(diagnostics.ErrInvalidType, decl, "FUNCTION '%s' cannot return %s", decl.Name, ret)
	}
	decl.Resolved = ret
	if err := c.table.DeclareFunction(&table.Signature{Name: decl.Name, Params: params, Returns: ret}); err != nil {
		return c.scopeError(decl, err)
	}
	return nil
}

func (c *Checker) declareProcedure(decl *ast.ProcDecl) error {
	if err := c.checkCallableLevel(decl, decl.Name); err != nil {
		return err
	}
	params, err := c.resolveParams(decl.Params)
	if err != nil {
		return err
	}
	if err := c.table.DeclareProcedure(&table.Signature{Name: decl.Name, Params: params}); err != nil {
		return c.scopeError(decl, err)
	}
	return nil
}

func (c *Checker) declareParams(params []*ast.Param) error {
	for _, p := range params {
		if err := c.table.Declare(p.Name, p.Resolved); err != nil {
			return diagnostics.NewSemanticError(diagnostics.ErrRedeclared, "parameter", p.Loc(), "%s", err.Error())
		}
	}
	return nil
}

func (c *Checker) checkFuncDecl(decl *ast.FuncDecl) error {
	c.table.EnterFunction(decl.Resolved)
	defer c.table.Leave()
	if err := c.declareParams(decl.Params); err != nil {
		return err
	}
	return c.checkBlock(decl.Body)
}

func (c *Checker) checkProcDecl(decl *ast.ProcDecl) error {
	c.table.EnterProcedure()
	defer c.table.Leave()
	if err := c.declareParams(decl.Params); err != nil {
		return err
	}
	return c.checkBlock(decl.Body)
}
