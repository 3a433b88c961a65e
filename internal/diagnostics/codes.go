package diagnostics

// Error codes for the pseudocode compiler
const (
	// Semantic errors (S prefix)
	ErrUndeclared       = "S0001"
	ErrRedeclared       = "S0002"
	ErrInvalidOperands  = "S0003"
	ErrArityMismatch    = "S0004"
	ErrForClause        = "S0005"
	ErrMisplacedReturn  = "S0006"
	ErrTypeMismatch     = "S0007"
	ErrNotIndexable     = "S0008"
	ErrFieldNotFound    = "S0009"
	ErrAggregateAssign  = "S0010"
	ErrInvalidType      = "S0011"
	ErrNestedCallable   = "S0012"
	ErrNotAddressable   = "S0013"
	ErrConditionType    = "S0014"
	ErrNotDereferencing = "S0015"

	// Emission errors (G prefix)
	ErrUnsupportedNode   = "G0001"
	ErrNonAddressableLHS = "G0002"
	ErrUnsupportedAssign = "G0003"
	ErrUnsupportedConcat = "G0004"
	ErrEmitArity         = "G0005"
	ErrUnresolvedName    = "G0006"
	ErrMemoryLimit       = "G0007"
)
