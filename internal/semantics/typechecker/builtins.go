package typechecker

import (
	"pseudo2wasm/internal/semantics/table"
	"pseudo2wasm/internal/types"
)

// BuiltinLength is the name of the string length builtin.
const BuiltinLength = "LENGTH"

// declareBuiltins inserts the fixed library into the root scope.
func (c *Checker) declareBuiltins() error {
	return c.table.DeclareFunction(&table.Signature{
		Name:    BuiltinLength,
		Params:  []table.Param{{Name: "s", Type: types.TypeString}},
		Returns: types.TypeInteger,
		Builtin: true,
	})
}
