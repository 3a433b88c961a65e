package diagnostics

import (
	"errors"
	"fmt"

	"pseudo2wasm/internal/source"
)

// SemanticError aborts checking: undeclared or redeclared names, illegal
// operand combinations, arity mismatches, non-INTEGER loop clauses and
// misplaced RETURN.
type SemanticError struct {
	Code string
	Kind string // node kind the error was raised on
	Msg  string
	Loc  *source.Location
	Help string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error [%s] %s: %s", e.Code, e.Kind, e.Msg)
}

// Diagnostic converts the error into a renderable diagnostic.
func (e *SemanticError) Diagnostic() *Diagnostic {
	d := NewError(e.Msg).
		WithCode(e.Code).
		WithPrimaryLabel(e.Loc, "in "+e.Kind).
		WithNote("raised on " + e.Kind)
	if e.Help != "" {
		d.WithHelp(e.Help)
	}
	return d
}

// NewSemanticError builds a SemanticError with a formatted message.
func NewSemanticError(code, kind string, loc *source.Location, format string, args ...any) *SemanticError {
	return &SemanticError{Code: code, Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// EmissionError aborts code generation on a construct the emitter cannot lower.
type EmissionError struct {
	Code string
	Kind string
	Msg  string
	Loc  *source.Location
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("emission error [%s] %s: %s", e.Code, e.Kind, e.Msg)
}

// Diagnostic converts the error into a renderable diagnostic.
func (e *EmissionError) Diagnostic() *Diagnostic {
	return NewError(e.Msg).
		WithCode(e.Code).
		WithPrimaryLabel(e.Loc, "in "+e.Kind).
		WithNote("code generation stopped at " + e.Kind)
}

// NewEmissionError builds an EmissionError with a formatted message.
func NewEmissionError(code, kind string, loc *source.Location, format string, args ...any) *EmissionError {
	return &EmissionError{Code: code, Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// FromError turns any error into a diagnostic, keeping the code of
// semantic and emission errors.
func FromError(err error) *Diagnostic {
	var semErr *SemanticError
	if errors.As(err, &semErr) {
		return semErr.Diagnostic()
	}
	var emitErr *EmissionError
	if errors.As(err, &emitErr) {
		return emitErr.Diagnostic()
	}
	return NewError(err.Error())
}
