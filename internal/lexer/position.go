// Package lexer turns C source text into a lazy stream of tokens for the parser.
package lexer

import "strconv"

// Position is a location in a source file.
//
// Line and Column are 1-based; Column counts characters, not bytes.
// Offset is the 0-based byte offset into the source, which makes
// source[tok.Position.Offset:][:len(tok.Lexeme)] recover the token text.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// String renders the position in the usual "file:line:col" form.
func (p Position) String() string {
	name := p.Filename
	if name == "" {
		name = "<input>"
	}
	return name + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position points somewhere. The zero value is invalid.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes before other in the same file.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// After reports whether p comes after other in the same file.
func (p Position) After(other Position) bool {
	return p.Offset > other.Offset
}
