package parser

import (
	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/parser/ast"
)

// Precedence orders the binding strength of operators, loosest first.
// Every binary level is left-associative.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecOr                    // ||
	PrecAnd                   // &&
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // - ~ !
	PrecPrimary               // literals, grouping
)

// binaryLevels lists the operator tokens handled at each binary level.
var binaryLevels = map[Precedence][]lexer.TokenType{
	PrecOr:         {lexer.TokenOr},
	PrecAnd:        {lexer.TokenAnd},
	PrecEquality:   {lexer.TokenEqual, lexer.TokenNotEqual},
	PrecComparison: {lexer.TokenLess, lexer.TokenGreater, lexer.TokenLessEqual, lexer.TokenGreaterEqual},
	PrecTerm:       {lexer.TokenPlus, lexer.TokenMinus},
	PrecFactor:     {lexer.TokenStar, lexer.TokenSlash},
}

var unaryOperators = []lexer.TokenType{lexer.TokenMinus, lexer.TokenTilde, lexer.TokenNot}

// getPrecedence returns the binary precedence of an operator token, or
// PrecNone if the token is not a binary operator.
func getPrecedence(tokenType lexer.TokenType) Precedence {
	for prec, ops := range binaryLevels {
		for _, op := range ops {
			if op == tokenType {
				return prec
			}
		}
	}
	return PrecNone
}

func binaryKind(tokenType lexer.TokenType) (ast.BinaryKind, bool) {
	switch tokenType {
	case lexer.TokenPlus:
		return ast.Add, true
	case lexer.TokenMinus:
		return ast.Sub, true
	case lexer.TokenStar:
		return ast.Mul, true
	case lexer.TokenSlash:
		return ast.Div, true
	case lexer.TokenAnd:
		return ast.LogicalAnd, true
	case lexer.TokenOr:
		return ast.LogicalOr, true
	case lexer.TokenLess:
		return ast.Less, true
	case lexer.TokenLessEqual:
		return ast.LessEqual, true
	case lexer.TokenGreater:
		return ast.Greater, true
	case lexer.TokenGreaterEqual:
		return ast.GreaterEqual, true
	case lexer.TokenEqual:
		return ast.Equal, true
	case lexer.TokenNotEqual:
		return ast.NotEqual, true
	}
	return 0, false
}

func unaryKind(tokenType lexer.TokenType) (ast.UnaryKind, bool) {
	switch tokenType {
	case lexer.TokenMinus:
		return ast.ArithmeticNegation, true
	case lexer.TokenTilde:
		return ast.BitwiseNegation, true
	case lexer.TokenNot:
		return ast.LogicalNegation, true
	}
	return 0, false
}
