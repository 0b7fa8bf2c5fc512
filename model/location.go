// Package model defines the typed representation of parsed C source that
// every other FlowSight package consumes: functions, structs, locations,
// call edges and flow-tree nodes.
package model

import "fmt"

// Location identifies a span of source text. Lines are 1-based and columns
// are 0-based (tree-sitter's own rows are 0-based; the parser adds 1).
type Location struct {
	File      string `json:"file" yaml:"file"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
	EndColumn int    `json:"endColumn" yaml:"endColumn"`
}

// NewLocation returns a zero-width location starting and ending at the same
// point.
func NewLocation(file string, line, column int) Location {
	return Location{File: file, Line: line, Column: column, EndLine: line, EndColumn: column}
}

// WithRange returns a location spanning from (line, column) to (endLine, endColumn).
func WithRange(file string, line, column, endLine, endColumn int) Location {
	return Location{File: file, Line: line, Column: column, EndLine: endLine, EndColumn: endColumn}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Contains reports whether the given line number falls within this
// location's line range, inclusive. Used by the flow builder to find the
// innermost enclosing function for an async trigger site.
func (l Location) Contains(line int) bool {
	return line >= l.Line && line <= l.EndLine
}

// Span returns the number of lines this location covers (at least 1).
func (l Location) Span() int {
	if l.EndLine < l.Line {
		return 1
	}
	return l.EndLine - l.Line + 1
}
