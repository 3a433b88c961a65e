package wasm

import (
	"pseudo2wasm/internal/semantics/typechecker"
)

const (
	builtinStrcmp = "__strcmp"
	builtinChrcmp = "__chrcmp"
)

// builtin is a hand-assembled function using only wasm params and locals.
// It never touches the shadow stack.
type builtin struct {
	name   string
	sig    funcSig
	locals []ValType
	body   func() code
}

var builtins = []builtin{
	{
		name:   typechecker.BuiltinLength,
		sig:    funcSig{params: []ValType{valTypeI32}, results: []ValType{valTypeI32}},
		locals: []ValType{valTypeI32, valTypeI32},
		body:   lengthBody,
	},
	{
		name:   builtinStrcmp,
		sig:    funcSig{params: []ValType{valTypeI32, valTypeI32}, results: []ValType{valTypeI32}},
		locals: []ValType{valTypeI32, valTypeI32},
		body:   strcmpBody,
	},
	{
		name:   builtinChrcmp,
		sig:    funcSig{params: []ValType{valTypeI32, valTypeI32}, results: []ValType{valTypeI32}},
		locals: []ValType{valTypeI32, valTypeI32, valTypeI32},
		body:   chrcmpBody,
	},
}

func (g *Generator) emitBuiltins() error {
	for _, b := range builtins {
		state := &funcState{name: b.name, params: uint32(len(b.sig.params)), locals: b.locals, body: b.body()}
		if err := g.addFunction(b.name, g.callables[b.name].index, b.sig, state); err != nil {
			return err
		}
	}
	return nil
}

// lengthBody counts UTF-8 characters of the NUL-terminated string at
// param 0: every byte that is not a continuation byte starts one.
func lengthBody() code {
	const (
		s = 0
		n = 1
		b = 2
	)
	var c code
	c.op(opcodeLoop, blockTypeVoid)
	c.localGet(s)
	c.mem(opcodeI32Load8U, 0)
	c.localTee(b)
	c.op(opcodeI32Eqz)
	c.op(opcodeIf, blockTypeVoid)
	c.localGet(n)
	c.op(opcodeReturn)
	c.op(opcodeEnd)

	c.localGet(b)
	c.i32Const(0xC0)
	c.op(opcodeI32And)
	c.i32Const(0x80)
	c.op(opcodeI32Ne)
	c.op(opcodeIf, blockTypeVoid)
	c.localGet(n)
	c.i32Const(1)
	c.op(opcodeI32Add)
	c.localSet(n)
	c.op(opcodeEnd)

	c.localGet(s)
	c.i32Const(1)
	c.op(opcodeI32Add)
	c.localSet(s)
	c.br(0)
	c.op(opcodeEnd)
	c.i32Const(0)
	return c
}

// strcmpBody compares two NUL-terminated strings bytewise and yields
// -1, 0 or 1. Unsigned byte order equals code point order for UTF-8.
func strcmpBody() code {
	const (
		a  = 0
		b  = 1
		ca = 2
		cb = 3
	)
	var c code
	c.op(opcodeLoop, blockTypeVoid)
	c.localGet(a)
	c.mem(opcodeI32Load8U, 0)
	c.localSet(ca)
	c.localGet(b)
	c.mem(opcodeI32Load8U, 0)
	c.localSet(cb)

	c.localGet(ca)
	c.localGet(cb)
	c.op(opcodeI32Ne)
	c.op(opcodeIf, blockTypeVoid)
	sign(&c, ca, cb)
	c.op(opcodeReturn)
	c.op(opcodeEnd)

	c.localGet(ca)
	c.op(opcodeI32Eqz)
	c.op(opcodeIf, blockTypeVoid)
	c.i32Const(0)
	c.op(opcodeReturn)
	c.op(opcodeEnd)

	for _, p := range []uint32{a, b} {
		c.localGet(p)
		c.i32Const(1)
		c.op(opcodeI32Add)
		c.localSet(p)
	}
	c.br(0)
	c.op(opcodeEnd)
	c.i32Const(0)
	return c
}

// chrcmpBody compares the character in param 0 with the string at param 1
// as if the character were a one-character string. The first code point
// of the string is decoded from UTF-8.
func chrcmpBody() code {
	const (
		ch = 0
		s  = 1
		b0 = 2
		cp = 3
		n  = 4
	)
	var c code

	c.localGet(s)
	c.mem(opcodeI32Load8U, 0)
	c.localTee(b0)
	c.op(opcodeI32Eqz)
	c.op(opcodeIf, blockTypeVoid)
	c.i32Const(1)
	c.op(opcodeReturn)
	c.op(opcodeEnd)

	// continuation ORs the low six bits of byte off, shifted, into the stack top.
	continuation := func(off uint32, shift int32) {
		c.localGet(s)
		c.mem(opcodeI32Load8U, off)
		c.i32Const(0x3F)
		c.op(opcodeI32And)
		if shift > 0 {
			c.i32Const(shift)
			c.op(opcodeI32Shl)
		}
		c.op(opcodeI32Or)
	}
	lead := func(mask, shift int32) {
		c.localGet(b0)
		c.i32Const(mask)
		c.op(opcodeI32And)
		c.i32Const(shift)
		c.op(opcodeI32Shl)
	}
	set := func(width int32) {
		c.localSet(cp)
		c.i32Const(width)
		c.localSet(n)
	}
	below := func(limit int32) {
		c.localGet(b0)
		c.i32Const(limit)
		c.op(opcodeI32LtU)
	}

	below(0x80)
	c.op(opcodeIf, blockTypeVoid)
	c.localGet(b0)
	set(1)
	c.op(opcodeElse)
	below(0xE0)
	c.op(opcodeIf, blockTypeVoid)
	lead(0x1F, 6)
	continuation(1, 0)
	set(2)
	c.op(opcodeElse)
	below(0xF0)
	c.op(opcodeIf, blockTypeVoid)
	lead(0x0F, 12)
	continuation(1, 6)
	continuation(2, 0)
	set(3)
	c.op(opcodeElse)
	lead(0x07, 18)
	continuation(1, 12)
	continuation(2, 6)
	continuation(3, 0)
	set(4)
	c.op(opcodeEnd)
	c.op(opcodeEnd)
	c.op(opcodeEnd)

	c.localGet(ch)
	c.localGet(cp)
	c.op(opcodeI32Ne)
	c.op(opcodeIf, blockTypeVoid)
	sign(&c, ch, cp)
	c.op(opcodeReturn)
	c.op(opcodeEnd)

	// equal first character: equal only if the string ends right after it
	c.localGet(s)
	c.localGet(n)
	c.op(opcodeI32Add)
	c.mem(opcodeI32Load8U, 0)
	c.op(opcodeI32Eqz)
	c.op(opcodeIf, blockTypeVoid)
	c.i32Const(0)
	c.op(opcodeReturn)
	c.op(opcodeEnd)
	c.i32Const(-1)
	return c
}

// sign pushes (x > y) - (x < y) for two unsigned locals.
func sign(c *code, x, y uint32) {
	c.localGet(x)
	c.localGet(y)
	c.op(opcodeI32GtU)
	c.localGet(x)
	c.localGet(y)
	c.op(opcodeI32LtU)
	c.op(opcodeI32Sub)
}
