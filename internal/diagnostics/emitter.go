package diagnostics

import (
	"bytes"
	"fmt"
	"io"

	"pseudo2wasm/colors"
)

const (
	LINE_POS         = "  --> %s:%d:%d\n"
	compileFailedMsg = "\nCompilation failed with %d error(s)\n"
)

// Emitter handles the rendering and output of diagnostics
type Emitter struct {
	writer io.Writer // Where to write output (os.Stderr, buffer, etc.)
}

// NewEmitter creates an emitter that writes to a specific writer
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

func (e *Emitter) Emit(diag *Diagnostic) {
	e.printHeader(diag)

	if diag.Label != nil {
		loc := diag.Label.Location
		colors.BLUE.Fprintf(e.writer, LINE_POS, loc.File(), loc.Start.Line, loc.Start.Column)
		if diag.Label.Message != "" {
			colors.GREY.Fprint(e.writer, "   | ")
			fmt.Fprintln(e.writer, diag.Label.Message)
		}
	}

	for _, note := range diag.Notes {
		colors.CYAN.Fprint(e.writer, "   = note: ")
		fmt.Fprintln(e.writer, note.Message)
	}

	if diag.Help != "" {
		colors.GREEN.Fprint(e.writer, "   = help: ")
		fmt.Fprintln(e.writer, diag.Help)
	}
}

// Summary prints the closing line after a failed compilation.
func (e *Emitter) Summary(errorCount int) {
	if errorCount > 0 {
		colors.RED.Fprintf(e.writer, compileFailedMsg, errorCount)
	}
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	color := e.getSeverityColor(diag.Severity)

	color.Fprint(e.writer, diag.Severity.String())
	if diag.Code != "" {
		fmt.Fprintf(e.writer, "[%s]", diag.Code)
	}
	fmt.Fprint(e.writer, ": ")
	color.Fprintln(e.writer, diag.Message)
}

// getSeverityColor returns the color for a given severity
func (e *Emitter) getSeverityColor(severity Severity) colors.COLOR {
	switch severity {
	case Warning:
		return colors.BOLD_YELLOW
	case Info:
		return colors.BOLD_CYAN
	default:
		return colors.BOLD_RED
	}
}

// Render renders one diagnostic with its summary to a string with ANSI codes.
func Render(diag *Diagnostic) string {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	e.Emit(diag)
	if diag.Severity == Error {
		e.Summary(1)
	}
	return buf.String()
}

// RenderHTML renders one diagnostic as HTML spans.
func RenderHTML(diag *Diagnostic) string {
	return colors.ConvertANSIToHTML(Render(diag))
}
