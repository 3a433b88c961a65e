package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"pseudo2wasm/internal/source"
)

// rawNode is the JSON shape of every node; Kind selects which fields apply.
type rawNode struct {
	Kind string           `json:"kind"`
	Loc  *source.Location `json:"loc"`

	Name    string            `json:"name"`
	Value   json.RawMessage   `json:"value"`
	Op      string            `json:"op"`
	X       json.RawMessage   `json:"x"`
	Y       json.RawMessage   `json:"y"`
	Indices []json.RawMessage `json:"indices"`
	Field   string            `json:"field"`
	Callee  string            `json:"callee"`
	Args    []json.RawMessage `json:"args"`

	Type    json.RawMessage `json:"type"`
	Element json.RawMessage `json:"element"`
	Dims    []rawDimension  `json:"dims"`
	Base    json.RawMessage `json:"base"`
	Alias   json.RawMessage `json:"alias"`
	Fields  []rawField      `json:"fields"`
	Params  []rawField      `json:"params"`
	Returns json.RawMessage `json:"returns"`

	Body   []json.RawMessage `json:"body"`
	Then   []json.RawMessage `json:"then"`
	Else   []json.RawMessage `json:"else"`
	Cond   json.RawMessage   `json:"cond"`
	Target json.RawMessage   `json:"target"`
	Var    string            `json:"var"`
	From   json.RawMessage   `json:"from"`
	To     json.RawMessage   `json:"to"`
	Step   json.RawMessage   `json:"step"`
	Values []json.RawMessage `json:"values"`
}

type rawDimension struct {
	Lower int32 `json:"lower"`
	Upper int32 `json:"upper"`
}

type rawField struct {
	Name string           `json:"name"`
	Type json.RawMessage  `json:"type"`
	Loc  *source.Location `json:"loc"`
}

// DecodeProgram reads a syntax tree produced by an external parser.
//
// The document is {"body": [statements...]}; every node carries a "kind"
// discriminator and an optional "loc" span.
func DecodeProgram(data []byte) (*Program, error) {
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("ast: %w", err)
	}
	body, err := decodeStmts(root.Body)
	if err != nil {
		return nil, err
	}
	prog := &Program{Body: body}
	if root.Loc != nil {
		prog.Location = *root.Loc
	}
	return prog, nil
}

func parseRaw(data json.RawMessage) (*rawNode, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("ast: %w", err)
	}
	if n.Kind == "" {
		return nil, fmt.Errorf("ast: node without kind: %s", abbreviate(data))
	}
	return &n, nil
}

func (n *rawNode) location() source.Location {
	if n.Loc == nil {
		return source.Location{}
	}
	return *n.Loc
}

func decodeStmts(list []json.RawMessage) ([]Statement, error) {
	stmts := make([]Statement, 0, len(list))
	for _, raw := range list {
		stmt, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeStmt(data json.RawMessage) (Statement, error) {
	n, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("ast: missing statement")
	}

	switch n.Kind {
	case "declare":
		typ, err := requireType(n.Type, "DECLARE "+n.Name)
		if err != nil {
			return nil, err
		}
		return &VarDecl{Name: n.Name, DataType: typ, Location: n.location()}, nil

	case "type":
		decl := &TypeDecl{Name: n.Name, Location: n.location()}
		if len(n.Alias) > 0 {
			alias, err := decodeType(n.Alias)
			if err != nil {
				return nil, err
			}
			decl.Alias = alias
			return decl, nil
		}
		for _, f := range n.Fields {
			typ, err := requireType(f.Type, "field "+f.Name)
			if err != nil {
				return nil, err
			}
			field := FieldDecl{Name: f.Name, DataType: typ}
			if f.Loc != nil {
				field.Location = *f.Loc
			}
			decl.Fields = append(decl.Fields, field)
		}
		return decl, nil

	case "function":
		params, err := decodeParams(n.Params)
		if err != nil {
			return nil, err
		}
		ret, err := requireType(n.Returns, "FUNCTION "+n.Name)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &FuncDecl{Name: n.Name, Params: params, Returns: ret, Body: body, Location: n.location()}, nil

	case "procedure":
		params, err := decodeParams(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ProcDecl{Name: n.Name, Params: params, Body: body, Location: n.location()}, nil

	case "assign":
		target, err := requireExpr(n.Target, "assignment target")
		if err != nil {
			return nil, err
		}
		value, err := requireExpr(n.Value, "assignment value")
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Target: target, Value: value, Location: n.location()}, nil

	case "if":
		cond, err := requireExpr(n.Cond, "IF condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(n.Then)
		if err != nil {
			return nil, err
		}
		var els []Statement
		if n.Else != nil {
			if els, err = decodeStmts(n.Else); err != nil {
				return nil, err
			}
		}
		return &IfStmt{Cond: cond, Then: then, Else: els, Location: n.location()}, nil

	case "while":
		cond, err := requireExpr(n.Cond, "WHILE condition")
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body, Location: n.location()}, nil

	case "repeat":
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		cond, err := requireExpr(n.Cond, "UNTIL condition")
		if err != nil {
			return nil, err
		}
		return &RepeatStmt{Body: body, Cond: cond, Location: n.location()}, nil

	case "for":
		if n.Var == "" {
			return nil, fmt.Errorf("ast: FOR without loop variable")
		}
		from, err := requireExpr(n.From, "FOR start value")
		if err != nil {
			return nil, err
		}
		to, err := requireExpr(n.To, "FOR end value")
		if err != nil {
			return nil, err
		}
		step, err := decodeExpr(n.Step)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		loc := n.location()
		return &ForStmt{
			Var:      &IdentifierExpr{Name: n.Var, Location: loc},
			From:     from,
			To:       to,
			Step:     step,
			Body:     body,
			Location: loc,
		}, nil

	case "call":
		args, err := decodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Callee: n.Callee, Args: args, Location: n.location()}, nil

	case "return":
		value, err := requireExpr(n.Value, "RETURN value")
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: value, Location: n.location()}, nil

	case "output":
		values, err := decodeExprs(n.Values)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("ast: OUTPUT without values")
		}
		return &OutputStmt{Values: values, Location: n.location()}, nil

	case "input":
		target, err := requireExpr(n.Target, "INPUT target")
		if err != nil {
			return nil, err
		}
		return &InputStmt{Target: target, Location: n.location()}, nil
	}

	return nil, fmt.Errorf("ast: unknown statement kind %q", n.Kind)
}

func decodeParams(list []rawField) ([]*Param, error) {
	params := make([]*Param, 0, len(list))
	for _, p := range list {
		typ, err := requireType(p.Type, "parameter "+p.Name)
		if err != nil {
			return nil, err
		}
		param := &Param{Name: p.Name, DataType: typ}
		if p.Loc != nil {
			param.Location = *p.Loc
		}
		params = append(params, param)
	}
	return params, nil
}

func decodeExprs(list []json.RawMessage) ([]Expression, error) {
	exprs := make([]Expression, 0, len(list))
	for _, raw := range list {
		expr, err := requireExpr(raw, "expression")
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func requireExpr(data json.RawMessage, what string) (Expression, error) {
	expr, err := decodeExpr(data)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("ast: missing %s", what)
	}
	return expr, nil
}

// decodeExpr returns nil, nil for an absent expression.
func decodeExpr(data json.RawMessage) (Expression, error) {
	n, err := parseRaw(data)
	if err != nil || n == nil {
		return nil, err
	}
	loc := n.location()

	switch n.Kind {
	case "integer":
		var v float64
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("ast: integer literal: %w", err)
		}
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("ast: integer literal %v out of range", v)
		}
		return &IntegerLit{Value: int32(v), Location: loc}, nil

	case "real":
		var v float64
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("ast: real literal: %w", err)
		}
		return &RealLit{Value: v, Location: loc}, nil

	case "char":
		var s string
		if err := json.Unmarshal(n.Value, &s); err != nil {
			return nil, fmt.Errorf("ast: char literal: %w", err)
		}
		if utf8.RuneCountInString(s) != 1 {
			return nil, fmt.Errorf("ast: char literal %q must hold exactly one character", s)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return &CharLit{Value: r, Location: loc}, nil

	case "string":
		var s string
		if err := json.Unmarshal(n.Value, &s); err != nil {
			return nil, fmt.Errorf("ast: string literal: %w", err)
		}
		return &StringLit{Value: s, Location: loc}, nil

	case "boolean":
		var b bool
		if err := json.Unmarshal(n.Value, &b); err != nil {
			return nil, fmt.Errorf("ast: boolean literal: %w", err)
		}
		return &BooleanLit{Value: b, Location: loc}, nil

	case "ident":
		return &IdentifierExpr{Name: n.Name, Location: loc}, nil

	case "index":
		x, err := requireExpr(n.X, "indexed value")
		if err != nil {
			return nil, err
		}
		indices, err := decodeExprs(n.Indices)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{X: x, Indices: indices, Location: loc}, nil

	case "select":
		x, err := requireExpr(n.X, "record value")
		if err != nil {
			return nil, err
		}
		return &SelectExpr{X: x, Field: n.Field, Location: loc}, nil

	case "deref":
		x, err := requireExpr(n.X, "pointer value")
		if err != nil {
			return nil, err
		}
		return &DerefExpr{X: x, Location: loc}, nil

	case "address":
		x, err := requireExpr(n.X, "addressed value")
		if err != nil {
			return nil, err
		}
		return &AddressExpr{X: x, Location: loc}, nil

	case "unary":
		x, err := requireExpr(n.X, "operand")
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: Operator(n.Op), X: x, Location: loc}, nil

	case "binary":
		x, err := requireExpr(n.X, "left operand")
		if err != nil {
			return nil, err
		}
		y, err := requireExpr(n.Y, "right operand")
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{X: x, Op: Operator(n.Op), Y: y, Location: loc}, nil

	case "call":
		args, err := decodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Callee: n.Callee, Args: args, Location: loc}, nil
	}

	return nil, fmt.Errorf("ast: unknown expression kind %q", n.Kind)
}

func requireType(data json.RawMessage, what string) (DataType, error) {
	typ, err := decodeType(data)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, fmt.Errorf("ast: missing type for %s", what)
	}
	return typ, nil
}

func decodeType(data json.RawMessage) (DataType, error) {
	n, err := parseRaw(data)
	if err != nil || n == nil {
		return nil, err
	}
	loc := n.location()

	switch n.Kind {
	case "named":
		return &NamedType{Name: n.Name, Location: loc}, nil
	case "array":
		elem, err := requireType(n.Element, "array element")
		if err != nil {
			return nil, err
		}
		if len(n.Dims) == 0 {
			return nil, fmt.Errorf("ast: array type without dimensions")
		}
		dims := make([]DimensionNode, len(n.Dims))
		for i, d := range n.Dims {
			dims[i] = DimensionNode{Lower: d.Lower, Upper: d.Upper}
		}
		return &ArrayTypeNode{Element: elem, Dims: dims, Location: loc}, nil
	case "pointer":
		base, err := requireType(n.Base, "pointer base")
		if err != nil {
			return nil, err
		}
		return &PointerTypeNode{Base: base, Location: loc}, nil
	}

	return nil, fmt.Errorf("ast: unknown type kind %q", n.Kind)
}

func abbreviate(data []byte) string {
	const limit = 40
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
