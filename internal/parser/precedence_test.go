package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/parser/ast"
)

func TestGetPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		token    lexer.TokenType
		expected Precedence
	}{
		{"logical or", lexer.TokenOr, PrecOr},
		{"logical and", lexer.TokenAnd, PrecAnd},
		{"equal", lexer.TokenEqual, PrecEquality},
		{"not equal", lexer.TokenNotEqual, PrecEquality},
		{"less than", lexer.TokenLess, PrecComparison},
		{"less equal", lexer.TokenLessEqual, PrecComparison},
		{"greater than", lexer.TokenGreater, PrecComparison},
		{"greater equal", lexer.TokenGreaterEqual, PrecComparison},
		{"plus", lexer.TokenPlus, PrecTerm},
		{"minus", lexer.TokenMinus, PrecTerm},
		{"star", lexer.TokenStar, PrecFactor},
		{"slash", lexer.TokenSlash, PrecFactor},
		{"tilde is unary only", lexer.TokenTilde, PrecNone},
		{"bang is unary only", lexer.TokenNot, PrecNone},
		{"single ampersand", lexer.TokenBitAnd, PrecNone},
		{"assign", lexer.TokenAssign, PrecNone},
		{"number", lexer.TokenNumber, PrecNone},
		{"semicolon", lexer.TokenSemicolon, PrecNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getPrecedence(tt.token))
		})
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	order := []Precedence{
		PrecNone, PrecOr, PrecAnd, PrecEquality, PrecComparison,
		PrecTerm, PrecFactor, PrecUnary, PrecPrimary,
	}
	for i := 1; i < len(order); i++ {
		assert.True(t, order[i-1] < order[i], "precedence %d should be lower than %d", order[i-1], order[i])
	}
}

func TestEveryBinaryOperatorHasAKind(t *testing.T) {
	for prec := PrecOr; prec <= PrecFactor; prec++ {
		ops := binaryLevels[prec]
		assert.NotZero(t, len(ops), "level %d has no operators", prec)
		for _, op := range ops {
			_, ok := binaryKind(op)
			assert.True(t, ok, "%s has no binary kind", op)
			assert.Equal(t, prec, getPrecedence(op))
		}
	}
	assert.Zero(t, len(binaryLevels[PrecUnary]))
}

func TestUnaryKind(t *testing.T) {
	tests := []struct {
		token lexer.TokenType
		kind  ast.UnaryKind
	}{
		{lexer.TokenMinus, ast.ArithmeticNegation},
		{lexer.TokenTilde, ast.BitwiseNegation},
		{lexer.TokenNot, ast.LogicalNegation},
	}
	for _, tt := range tests {
		kind, ok := unaryKind(tt.token)
		assert.True(t, ok)
		assert.Equal(t, tt.kind, kind)
	}
	_, ok := unaryKind(lexer.TokenPlus)
	assert.False(t, ok)
}
