package typechecker

import (
	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

type opClass int

const (
	classArithmetic opClass = iota
	classModulo
	classComparison
	classConcat
	classLogical
)

func (c opClass) String() string {
	switch c {
	case classArithmetic:
		return "arithmetic"
	case classModulo:
		return "MOD"
	case classComparison:
		return "comparison"
	case classConcat:
		return "concatenation"
	case classLogical:
		return "logical"
	}
	return "unknown"
}

func classOf(op ast.Operator) (opClass, bool) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return classArithmetic, true
	case ast.OpMod:
		return classModulo, true
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		return classComparison, true
	case ast.OpConcat:
		return classConcat, true
	case ast.OpAnd, ast.OpOr:
		return classLogical, true
	}
	return 0, false
}

type opKey struct {
	class       opClass
	left, right types.BasicKind
}

// opRule gives the kind both operands are converted to and the result kind.
// Rules involving STRING keep their operands as they are.
type opRule struct {
	operand types.BasicKind
	result  types.BasicKind
}

const (
	I = types.INTEGER
	R = types.REAL
	C = types.CHAR
	S = types.STRING
	B = types.BOOLEAN
)

// binaryRules lists every legal (operator class, left, right) combination.
// Anything missing is rejected.
var binaryRules = map[opKey]opRule{
	{classArithmetic, I, I}: {I, I},
	{classArithmetic, I, C}: {I, I},
	{classArithmetic, I, B}: {I, I},
	{classArithmetic, C, I}: {I, I},
	{classArithmetic, C, C}: {I, I},
	{classArithmetic, C, B}: {I, I},
	{classArithmetic, B, I}: {I, I},
	{classArithmetic, B, C}: {I, I},
	{classArithmetic, B, B}: {I, I},
	{classArithmetic, I, R}: {R, R},
	{classArithmetic, R, I}: {R, R},
	{classArithmetic, R, R}: {R, R},

	{classModulo, I, I}: {I, I},
	{classModulo, I, C}: {I, I},
	{classModulo, I, B}: {I, I},
	{classModulo, C, I}: {I, I},
	{classModulo, C, C}: {I, I},
	{classModulo, C, B}: {I, I},
	{classModulo, B, I}: {I, I},
	{classModulo, B, C}: {I, I},
	{classModulo, B, B}: {I, I},

	{classComparison, I, I}: {I, B},
	{classComparison, I, C}: {I, B},
	{classComparison, I, B}: {I, B},
	{classComparison, C, I}: {I, B},
	{classComparison, C, C}: {I, B},
	{classComparison, C, B}: {I, B},
	{classComparison, B, I}: {I, B},
	{classComparison, B, C}: {I, B},
	{classComparison, B, B}: {I, B},
	{classComparison, I, R}: {R, B},
	{classComparison, R, I}: {R, B},
	{classComparison, R, R}: {R, B},
	{classComparison, S, S}: {S, B},
	{classComparison, C, S}: {S, B},
	{classComparison, S, C}: {S, B},

	{classConcat, S, S}: {S, S},
	{classConcat, S, C}: {S, S},
	{classConcat, C, S}: {S, S},
	{classConcat, C, C}: {S, S},

	{classLogical, B, B}: {B, B},
}

func lookupBinaryRule(op ast.Operator, left, right types.BasicKind) (opRule, bool) {
	class, ok := classOf(op)
	if !ok {
		return opRule{}, false
	}
	rule, ok := binaryRules[opKey{class, left, right}]
	return rule, ok
}

// unaryRules maps operator and operand kind to the result kind.
var unaryRules = map[ast.Operator]map[types.BasicKind]types.BasicKind{
	ast.OpSub: {I: I, R: R},
	ast.OpAdd: {I: I, R: R},
	ast.OpNot: {B: B},
}
