package host

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strconv"
	"testing"

	"github.com/nalgeon/be"

	"pseudo2wasm/internal/compiler"
	"pseudo2wasm/internal/diagnostics"
	"pseudo2wasm/internal/frontend/ast"
)

func TestIntegerPlusReal(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		stmts  []ast.Statement
	}{
		{"literals", nil, []ast.Statement{output(bin(num(3), ast.OpAdd, realLit(3.14)))}},
		{"read from input", []string{"3", "3.14"}, []ast.Statement{
			declare("i", named("INTEGER")),
			declare("j", named("REAL")),
			input(id("i")),
			input(id("j")),
			output(bin(id("i"), ast.OpAdd, id("j"))),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runOutput(t, tt.inputs, tt.stmts...)
			be.Equal(t, len(out), 1)
			got, err := strconv.ParseFloat(out[0], 64)
			be.Err(t, err, nil)
			be.True(t, math.Abs(got-6.14) < 1e-9)
		})
	}
}

func TestNestedRecords(t *testing.T) {
	out := runOutput(t, nil,
		&ast.TypeDecl{Name: "Inner", Fields: []ast.FieldDecl{{Name: "v", DataType: named("INTEGER")}}},
		&ast.TypeDecl{Name: "Outer", Fields: []ast.FieldDecl{
			{Name: "a", DataType: named("INTEGER")},
			{Name: "inner", DataType: named("Inner")},
		}},
		declare("o", named("Outer")),
		assign(sel(id("o"), "a"), num(1)),
		assign(sel(sel(id("o"), "inner"), "v"), num(7)),
		output(sel(sel(id("o"), "inner"), "v")),
		output(sel(id("o"), "a")),
	)
	be.Equal(t, out, []string{"7", "1"})
}

func TestForWithStep(t *testing.T) {
	out := runOutput(t, nil,
		declare("i", named("INTEGER")),
		forLoop("i", num(1), num(5), num(2), output(id("i"))),
	)
	be.Equal(t, out, []string{"1", "3", "5"})
}

func TestForDefaultStepAndEmptyRange(t *testing.T) {
	out := runOutput(t, nil,
		declare("i", named("INTEGER")),
		forLoop("i", num(1), num(3), nil, output(id("i"))),
		forLoop("i", num(5), num(4), nil, output(str("never"))),
		output(id("i")),
	)
	be.Equal(t, out, []string{"1", "2", "3", "5"})
}

func TestUndeclaredFunctionProducesNoModule(t *testing.T) {
	compiled := compiler.Compile(&ast.Program{Body: []ast.Statement{
		output(call("missing")),
	}}, &compiler.Options{Writer: io.Discard})

	be.True(t, !compiled.Success)
	be.True(t, compiled.Binary() == nil)
	var semErr *diagnostics.SemanticError
	be.True(t, errors.As(compiled.Err, &semErr))
}

func sumFunction() *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:    "sum",
		Params:  []*ast.Param{param("n", "INTEGER")},
		Returns: named("INTEGER"),
		Body: []ast.Statement{
			&ast.IfStmt{
				Cond: bin(id("n"), ast.OpLe, num(0)),
				Then: []ast.Statement{&ast.ReturnStmt{Value: num(0)}},
			},
			&ast.ReturnStmt{Value: bin(id("n"), ast.OpAdd, call("sum", bin(id("n"), ast.OpSub, num(1))))},
		},
	}
}

func TestRecursiveSum(t *testing.T) {
	res, compiled, err := compileAndRun(t, nil,
		sumFunction(),
		declare("i", named("INTEGER")),
		forLoop("i", num(1), num(20), nil, output(call("sum", id("i")))),
	)
	be.Err(t, err, nil)
	be.Equal(t, len(res.Output), 20)
	for i, got := range res.Output {
		n := i + 1
		be.Equal(t, got, strconv.Itoa(n*(n+1)/2))
	}

	// every frame was popped
	be.Equal(t, res.StackTop, compiled.Module.StaticEnd)
	be.Equal(t, res.StackBase, compiled.Module.StaticEnd)
}

func TestLocalsSurviveRecursion(t *testing.T) {
	// each activation keeps its own copy of k across the recursive call
	fact := &ast.FuncDecl{
		Name:    "fact",
		Params:  []*ast.Param{param("n", "INTEGER")},
		Returns: named("INTEGER"),
		Body: []ast.Statement{
			declare("k", named("INTEGER")),
			assign(id("k"), id("n")),
			&ast.IfStmt{
				Cond: bin(id("n"), ast.OpLe, num(1)),
				Then: []ast.Statement{&ast.ReturnStmt{Value: num(1)}},
			},
			&ast.ReturnStmt{Value: bin(call("fact", bin(id("n"), ast.OpSub, num(1))), ast.OpMul, id("k"))},
		},
	}
	out := runOutput(t, nil, fact, output(call("fact", num(6)), call("fact", num(1))))
	be.Equal(t, out, []string{"720", "1"})
}

func TestArrays(t *testing.T) {
	out := runOutput(t, nil,
		declare("grid", array(named("INTEGER"), 1, 3, 1, 2)),
		declare("zero", array(named("REAL"), 0, 2)),
		declare("i", named("INTEGER")),
		declare("j", named("INTEGER")),
		forLoop("i", num(1), num(3), nil,
			forLoop("j", num(1), num(2), nil,
				assign(index(id("grid"), id("i"), id("j")), bin(bin(id("i"), ast.OpMul, num(10)), ast.OpAdd, id("j"))),
			),
		),
		assign(index(id("zero"), num(0)), realLit(0.5)),
		assign(index(id("zero"), num(2)), realLit(2.5)),
		output(index(id("grid"), num(2), num(1)), index(id("grid"), num(3), num(2)), index(id("grid"), num(1), num(1))),
		output(bin(index(id("zero"), num(0)), ast.OpAdd, index(id("zero"), num(2)))),
	)
	be.Equal(t, out, []string{"21", "32", "11", "3"})
}

func TestPointers(t *testing.T) {
	out := runOutput(t, nil,
		declare("x", named("INTEGER")),
		declare("p", &ast.PointerTypeNode{Base: named("INTEGER")}),
		declare("row", array(named("INTEGER"), 0, 2)),
		assign(id("x"), num(5)),
		assign(id("p"), &ast.AddressExpr{X: id("x")}),
		assign(&ast.DerefExpr{X: id("p")}, bin(&ast.DerefExpr{X: id("p")}, ast.OpAdd, num(1))),
		output(id("x")),

		assign(index(id("row"), num(2)), num(42)),
		assign(id("p"), &ast.AddressExpr{X: index(id("row"), num(0))}),
		output(index(id("p"), num(2))),
	)
	be.Equal(t, out, []string{"6", "42"})
}

func TestLength(t *testing.T) {
	out := runOutput(t, nil,
		declare("s", named("STRING")),
		assign(id("s"), str("héllo")),
		output(call("LENGTH", id("s")), call("LENGTH", str("")), call("LENGTH", str("abc"))),
	)
	be.Equal(t, out, []string{"5", "0", "3"})
}

func TestStringComparison(t *testing.T) {
	cases := []struct {
		expr *ast.BinaryExpr
		want string
	}{
		{bin(str("apple"), ast.OpLt, str("banana")), "1"},
		{bin(str("apple"), ast.OpGt, str("banana")), "0"},
		{bin(str("same"), ast.OpEq, str("same")), "1"},
		{bin(str("same"), ast.OpNe, str("same")), "0"},
		{bin(str("ab"), ast.OpLt, str("abc")), "1"},
		{bin(char('b'), ast.OpEq, str("b")), "1"},
		{bin(str("b"), ast.OpEq, char('b')), "1"},
		{bin(char('a'), ast.OpLt, str("abc")), "1"},
		{bin(str("abc"), ast.OpGt, char('a')), "1"},
		{bin(str("abc"), ast.OpLe, char('a')), "0"},
		{bin(char('é'), ast.OpEq, str("é")), "1"},
		{bin(str(""), ast.OpLt, char('a')), "1"},
	}
	var stmts []ast.Statement
	var want []string
	for _, c := range cases {
		stmts = append(stmts, output(c.expr))
		want = append(want, c.want)
	}
	be.Equal(t, runOutput(t, nil, stmts...), want)
}

func TestOutputOfEveryScalar(t *testing.T) {
	out := runOutput(t, nil,
		output(num(-12), realLit(1.5), char('λ'), str("text"), boolean(true), boolean(false)),
	)
	be.Equal(t, out, []string{"-12", "1.5", "λ", "text", "1", "0"})
}

func TestArithmeticAndLogic(t *testing.T) {
	out := runOutput(t, nil,
		output(
			bin(num(17), ast.OpMod, num(5)),
			bin(num(17), ast.OpDiv, num(5)),
			&ast.UnaryExpr{Op: ast.OpSub, X: num(5)},
			bin(realLit(1.5), ast.OpMul, num(2)),
			bin(&ast.UnaryExpr{Op: ast.OpNot, X: bin(num(1), ast.OpGt, num(2))}, ast.OpAnd, boolean(true)),
			bin(boolean(false), ast.OpOr, bin(char('a'), ast.OpLt, char('b'))),
			bin(char('a'), ast.OpAdd, num(1)),
		),
	)
	be.Equal(t, out, []string{"2", "3", "-5", "3", "1", "1", "98"})
}

func TestWhileAndRepeat(t *testing.T) {
	out := runOutput(t, nil,
		declare("i", named("INTEGER")),
		assign(id("i"), num(0)),
		&ast.WhileStmt{
			Cond: bin(id("i"), ast.OpLt, num(3)),
			Body: []ast.Statement{output(id("i")), assign(id("i"), bin(id("i"), ast.OpAdd, num(1)))},
		},
		&ast.RepeatStmt{
			Body: []ast.Statement{output(id("i")), assign(id("i"), bin(id("i"), ast.OpSub, num(1)))},
			Cond: bin(id("i"), ast.OpEq, num(0)),
		},
	)
	be.Equal(t, out, []string{"0", "1", "2", "3", "2", "1"})
}

func TestProcedureWithLocalsAndElse(t *testing.T) {
	show := &ast.ProcDecl{
		Name:   "show",
		Params: []*ast.Param{param("c", "CHAR"), param("n", "INTEGER")},
		Body: []ast.Statement{
			declare("k", named("INTEGER")),
			assign(id("k"), bin(id("n"), ast.OpMul, num(2))),
			&ast.IfStmt{
				Cond: bin(id("k"), ast.OpGt, num(5)),
				Then: []ast.Statement{output(id("c"))},
				Else: []ast.Statement{output(id("k"))},
			},
		},
	}
	out := runOutput(t, nil,
		show,
		&ast.CallStmt{Callee: "show", Args: []ast.Expression{char('x'), num(4)}},
		&ast.CallStmt{Callee: "show", Args: []ast.Expression{char('y'), num(1)}},
	)
	be.Equal(t, out, []string{"x", "2"})
}

func TestCallArgumentsAreConverted(t *testing.T) {
	half := &ast.FuncDecl{
		Name:    "half",
		Params:  []*ast.Param{param("x", "REAL")},
		Returns: named("REAL"),
		Body:    []ast.Statement{&ast.ReturnStmt{Value: bin(id("x"), ast.OpDiv, num(2))}},
	}
	out := runOutput(t, nil,
		half,
		declare("r", named("REAL")),
		declare("n", named("INTEGER")),
		assign(id("r"), call("half", num(5))),
		assign(id("n"), call("half", num(9))),
		output(id("r"), id("n")),
	)
	be.Equal(t, out, []string{"2.5", "4"})
}

func TestInput(t *testing.T) {
	out := runOutput(t, []string{"21", "héllo", "2.5", "Z", "TRUE", "no"},
		declare("n", named("INTEGER")),
		declare("s", named("STRING")),
		declare("r", named("REAL")),
		declare("c", named("CHAR")),
		declare("b", named("BOOLEAN")),
		declare("f", named("BOOLEAN")),
		input(id("n")),
		input(id("s")),
		input(id("r")),
		input(id("c")),
		input(id("b")),
		input(id("f")),
		output(bin(id("n"), ast.OpMul, num(2)), id("s"), call("LENGTH", id("s")), id("r"), id("c"), id("b"), id("f")),
		output(bin(id("s"), ast.OpEq, str("héllo"))),
	)
	be.Equal(t, out, []string{"42", "héllo", "5", "2.5", "Z", "1", "0", "1"})
}

func TestInputExhausted(t *testing.T) {
	res, _, err := compileAndRun(t, []string{"1"},
		declare("n", named("INTEGER")),
		input(id("n")),
		output(id("n")),
		input(id("n")),
	)
	be.Err(t, err, "no more input")
	be.Equal(t, res.Output, []string{"1"})
}

func TestInputNotANumber(t *testing.T) {
	_, _, err := compileAndRun(t, []string{"twelve"},
		declare("n", named("INTEGER")),
		input(id("n")),
	)
	be.Err(t, err, "INPUT INTEGER")
}

func TestStdoutReceivesLines(t *testing.T) {
	compiled := compiler.Compile(&ast.Program{Body: []ast.Statement{
		output(num(1), str("two")),
	}}, &compiler.Options{Writer: io.Discard})
	be.Err(t, compiled.Err, nil)

	var buf bytes.Buffer
	res, err := Run(context.Background(), compiled.Binary(), Config{Stdout: &buf})
	be.Err(t, err, nil)
	be.Equal(t, res.Output, []string{"1", "two"})
	be.Equal(t, buf.String(), "1\ntwo\n")
}

func TestRunRejectsBadBinaries(t *testing.T) {
	_, err := Run(context.Background(), []byte("junk"), Config{})
	be.Err(t, err, "magic")

	// a module without the memory import
	_, err = Run(context.Background(), []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, Config{})
	be.Err(t, err, "does not import js.mem")
}
