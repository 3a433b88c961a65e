package wasm

import (
	"encoding/binary"
	"fmt"
	"math"

	"pseudo2wasm/internal/frontend/ast"
	"pseudo2wasm/internal/types"
)

const (
	blockTypeVoid = 0x40
)

const (
	opcodeLoop           = 0x03
	opcodeIf             = 0x04
	opcodeElse           = 0x05
	opcodeEnd            = 0x0b
	opcodeBr             = 0x0c
	opcodeReturn         = 0x0f
	opcodeCall           = 0x10
	opcodeLocalGet       = 0x20
	opcodeLocalSet       = 0x21
	opcodeLocalTee       = 0x22
	opcodeGlobalGet      = 0x23
	opcodeGlobalSet      = 0x24
	opcodeI32Const       = 0x41
	opcodeF64Const       = 0x44
	opcodeI32Eqz         = 0x45
	opcodeI32Eq          = 0x46
	opcodeI32Ne          = 0x47
	opcodeI32LtS         = 0x48
	opcodeI32LtU         = 0x49
	opcodeI32GtS         = 0x4a
	opcodeI32GtU         = 0x4b
	opcodeI32LeS         = 0x4c
	opcodeI32GeS         = 0x4e
	opcodeF64Eq          = 0x61
	opcodeF64Ne          = 0x62
	opcodeF64Lt          = 0x63
	opcodeF64Gt          = 0x64
	opcodeF64Le          = 0x65
	opcodeF64Ge          = 0x66
	opcodeI32Add         = 0x6a
	opcodeI32Sub         = 0x6b
	opcodeI32Mul         = 0x6c
	opcodeI32DivS        = 0x6d
	opcodeI32RemS        = 0x6f
	opcodeI32And         = 0x71
	opcodeI32Or          = 0x72
	opcodeI32Shl         = 0x74
	opcodeF64Neg         = 0x9a
	opcodeF64Add         = 0xa0
	opcodeF64Sub         = 0xa1
	opcodeF64Mul         = 0xa2
	opcodeF64Div         = 0xa3
	opcodeI32TruncF64S   = 0xaa
	opcodeF64ConvertI32S = 0xb7
)

const (
	opcodeI32Load   = 0x28
	opcodeF64Load   = 0x2b
	opcodeI32Load8U = 0x2d
	opcodeI32Store  = 0x36
	opcodeF64Store  = 0x39
)

// valueType maps a checked type to the wasm value that carries it. REAL
// travels as f64; every other scalar, string handles and pointers as i32.
func valueType(t types.Type) (ValType, error) {
	switch v := t.(type) {
	case *types.BasicType:
		if v.Kind == types.REAL {
			return valTypeF64, nil
		}
		return valTypeI32, nil
	case *types.PointerType:
		return valTypeI32, nil
	}
	return 0, fmt.Errorf("wasm: no value type for %s", t)
}

func binaryOpcode(op ast.Operator, valType ValType) (byte, error) {
	switch valType {
	case valTypeI32:
		switch op {
		case ast.OpAdd:
			return opcodeI32Add, nil
		case ast.OpSub:
			return opcodeI32Sub, nil
		case ast.OpMul:
			return opcodeI32Mul, nil
		case ast.OpDiv:
			return opcodeI32DivS, nil
		case ast.OpMod:
			return opcodeI32RemS, nil
		case ast.OpAnd:
			return opcodeI32And, nil
		case ast.OpOr:
			return opcodeI32Or, nil
		}
	case valTypeF64:
		switch op {
		case ast.OpAdd:
			return opcodeF64Add, nil
		case ast.OpSub:
			return opcodeF64Sub, nil
		case ast.OpMul:
			return opcodeF64Mul, nil
		case ast.OpDiv:
			return opcodeF64Div, nil
		}
	}
	if isComparison(op) {
		return compareOpcode(op, valType)
	}
	return 0, fmt.Errorf("wasm: unsupported binary op %s on %s", op, valType)
}

func compareOpcode(op ast.Operator, valType ValType) (byte, error) {
	type pair struct{ i32, f64 byte }
	var p pair
	switch op {
	case ast.OpEq:
		p = pair{opcodeI32Eq, opcodeF64Eq}
	case ast.OpNe:
		p = pair{opcodeI32Ne, opcodeF64Ne}
	case ast.OpLt:
		p = pair{opcodeI32LtS, opcodeF64Lt}
	case ast.OpGt:
		p = pair{opcodeI32GtS, opcodeF64Gt}
	case ast.OpLe:
		p = pair{opcodeI32LeS, opcodeF64Le}
	case ast.OpGe:
		p = pair{opcodeI32GeS, opcodeF64Ge}
	default:
		return 0, fmt.Errorf("wasm: %s is not a comparison", op)
	}
	switch valType {
	case valTypeI32:
		return p.i32, nil
	case valTypeF64:
		return p.f64, nil
	}
	return 0, fmt.Errorf("wasm: invalid compare type")
}

func isComparison(op ast.Operator) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		return true
	}
	return false
}

// flipComparison returns the operator that holds after swapping operands.
func flipComparison(op ast.Operator) ast.Operator {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLe:
		return ast.OpGe
	case ast.OpGe:
		return ast.OpLe
	}
	return op
}

func castOpcode(from, to ValType) ([]byte, bool) {
	if from == to {
		return nil, true
	}
	switch {
	case from == valTypeI32 && to == valTypeF64:
		return []byte{opcodeF64ConvertI32S}, true
	case from == valTypeF64 && to == valTypeI32:
		return []byte{opcodeI32TruncF64S}, true
	}
	return nil, false
}

func loadOpcode(t types.Type) (byte, error) {
	valType, err := valueType(t)
	if err != nil {
		return 0, err
	}
	if valType == valTypeF64 {
		return opcodeF64Load, nil
	}
	return opcodeI32Load, nil
}

func storeOpcode(t types.Type) (byte, error) {
	valType, err := valueType(t)
	if err != nil {
		return 0, err
	}
	if valType == valTypeF64 {
		return opcodeF64Store, nil
	}
	return opcodeI32Store, nil
}

func encodeF64(v float64) []byte {
	bits := math.Float64bits(v)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, bits)
	return buf
}

// code is an instruction stream under construction.
type code []byte

func (c *code) op(ops ...byte) {
	*c = append(*c, ops...)
}

func (c *code) i32Const(v int32) {
	*c = append(*c, opcodeI32Const)
	*c = append(*c, encodeS32(v)...)
}

func (c *code) f64Const(v float64) {
	*c = append(*c, opcodeF64Const)
	*c = append(*c, encodeF64(v)...)
}

func (c *code) withIndex(op byte, index uint32) {
	*c = append(*c, op)
	*c = append(*c, encodeU32(index)...)
}

func (c *code) localGet(i uint32)  { c.withIndex(opcodeLocalGet, i) }
func (c *code) localSet(i uint32)  { c.withIndex(opcodeLocalSet, i) }
func (c *code) localTee(i uint32)  { c.withIndex(opcodeLocalTee, i) }
func (c *code) globalGet(i uint32) { c.withIndex(opcodeGlobalGet, i) }
func (c *code) globalSet(i uint32) { c.withIndex(opcodeGlobalSet, i) }
func (c *code) call(fn uint32)     { c.withIndex(opcodeCall, fn) }
func (c *code) br(depth uint32)    { c.withIndex(opcodeBr, depth) }

// mem emits a load or store with alignment hint 0 and a static offset.
func (c *code) mem(op byte, offset uint32) {
	*c = append(*c, op)
	*c = append(*c, encodeU32(0)...)
	*c = append(*c, encodeU32(offset)...)
}
