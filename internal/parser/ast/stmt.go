package ast

import (
	"github.com/hassan/stagecc/internal/lexer"
)

// Statement is a return statement, the only statement form.
type Statement struct {
	ReturnPos lexer.Position
	Expr      Expr
	Semicolon lexer.Position
}

// Function is a parameterless function returning int.
type Function struct {
	Name    string
	NamePos lexer.Position
	IntPos  lexer.Position
	Body    *Statement
	RBrace  lexer.Position
}

// Include is an #include directive preceding the function.
type Include struct {
	HashPos lexer.Position
	Header  string // interior of the header name
	System  bool   // <header> rather than "header"
}

// Program is a translation unit: optional includes and one function.
type Program struct {
	Includes []*Include
	Function *Function
}
