package source

import "fmt"

// Position represents a specific location in the source code with line, column, and index information.
type Position struct {
	Line   int `json:"line"`   // Line number in the source code.
	Column int `json:"column"` // Column number in the source code.
	Index  int `json:"index"`  // Index in the source code.
}

func (p *Position) String() string {
	if p == nil {
		return "?:?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
