package parser

import (
	"errors"
	"fmt"

	"github.com/hassan/stagecc/internal/lexer"
)

var (
	// ErrUnexpectedToken is wrapped by errors for a token of the wrong type.
	ErrUnexpectedToken = errors.New("unexpected token")

	// ErrUnexpectedEOF is wrapped by errors for input that ends too early.
	ErrUnexpectedEOF = errors.New("unexpected end of file")

	// ErrLexical is wrapped by errors for input the lexer could not classify.
	ErrLexical = errors.New("unrecognized token")
)

// Error is a syntax or lexical error at a source position. Parsing stops at
// the first one.
type Error struct {
	Pos  lexer.Position
	End  lexer.Position // just past the offending token
	Msg  string
	kind error
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Span returns the source range of the offending token.
func (e *Error) Span() (lexer.Position, lexer.Position) {
	return e.Pos, e.End
}

// unexpected builds the error for finding tok where expected was required.
func unexpected(tok lexer.Token, expected string) *Error {
	switch tok.Type {
	case lexer.TokenEOF:
		return &Error{
			Pos:  tok.Position,
			End:  tok.Position,
			Msg:  fmt.Sprintf("unexpected end of file (expected %s)", expected),
			kind: ErrUnexpectedEOF,
		}
	case lexer.TokenError:
		return &Error{
			Pos:  tok.Position,
			End:  tok.End(),
			Msg:  fmt.Sprintf("unrecognized token '%s' (%s)", tok.Lexeme, tok.Err),
			kind: ErrLexical,
		}
	}
	return &Error{
		Pos:  tok.Position,
		End:  tok.End(),
		Msg:  fmt.Sprintf("unexpected token %s '%s' (expected %s)", tok.Type, tok.Lexeme, expected),
		kind: ErrUnexpectedToken,
	}
}
