package diagnostics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"pseudo2wasm/colors"
	"pseudo2wasm/internal/source"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{Error, "error"},
		{Warning, "warning"},
		{Info, "info"},
		{Severity(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.expected {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.expected)
		}
	}
}

func TestDiagnosticBuilder(t *testing.T) {
	loc := source.NewLocation(nil, &source.Position{Line: 3, Column: 7}, &source.Position{Line: 3, Column: 9})
	diag := NewError("undeclared identifier 'x'").
		WithCode(ErrUndeclared).
		WithPrimaryLabel(loc, "not found").
		WithNote("first note").
		WithHelp("declare it first")

	be.Equal(t, diag.Severity, Error)
	be.Equal(t, diag.Code, ErrUndeclared)
	be.True(t, diag.Label != nil)
	be.Equal(t, diag.Label.Message, "not found")
	be.Equal(t, len(diag.Notes), 1)
	be.Equal(t, diag.Help, "declare it first")

	unlabeled := NewWarning("w").WithPrimaryLabel(nil, "ignored")
	be.True(t, unlabeled.Label == nil)
}

func TestSemanticErrorConversion(t *testing.T) {
	err := NewSemanticError(ErrArityMismatch, "function call", nil, "function '%s' expects %d arguments, but %d are provided", "f", 2, 1)
	be.Equal(t, err.Error(), "semantic error [S0004] function call: function 'f' expects 2 arguments, but 1 are provided")

	wrapped := fmt.Errorf("check: %w", err)
	diag := FromError(wrapped)
	be.Equal(t, diag.Code, ErrArityMismatch)
	be.Equal(t, diag.Message, "function 'f' expects 2 arguments, but 1 are provided")
}

func TestEmissionErrorConversion(t *testing.T) {
	err := NewEmissionError(ErrUnsupportedConcat, "binary expression", nil, "unsupported string concatenation")
	be.Equal(t, err.Error(), "emission error [G0004] binary expression: unsupported string concatenation")

	diag := FromError(err)
	be.Equal(t, diag.Code, ErrUnsupportedConcat)

	plain := FromError(fmt.Errorf("boom"))
	be.Equal(t, plain.Code, "")
	be.Equal(t, plain.Message, "boom")
}

func TestRender(t *testing.T) {
	file := "prog.json"
	loc := source.NewLocation(&file, &source.Position{Line: 2, Column: 4}, &source.Position{Line: 2, Column: 8})
	semErr := &SemanticError{Code: ErrUndeclared, Kind: "identifier", Msg: "undeclared identifier 'y'", Loc: loc, Help: "declare y with DECLARE"}

	out := colors.StripANSI(Render(semErr.Diagnostic()))

	be.True(t, strings.Contains(out, "error[S0001]: undeclared identifier 'y'"))
	be.True(t, strings.Contains(out, "--> prog.json:2:4"))
	be.True(t, strings.Contains(out, "= note: raised on identifier"))
	be.True(t, strings.Contains(out, "= help: declare y with DECLARE"))
	be.True(t, strings.Contains(out, "Compilation failed with 1 error(s)"))

	html := RenderHTML(semErr.Diagnostic())
	be.True(t, strings.Contains(html, "<span"))
	be.True(t, !strings.Contains(html, "\033["))
}
