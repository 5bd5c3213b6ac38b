package ast

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func num(v int64) *Constant { return &Constant{Value: v} }

func unary(k UnaryKind, operand Expr) *UnaryOp { return &UnaryOp{Kind: k, Operand: operand} }

func binary(k BinaryKind, l, r Expr) *BinaryOp { return &BinaryOp{Kind: k, Left: l, Right: r} }

func program(e Expr) *Program {
	return &Program{Function: &Function{Name: "main", Body: &Statement{Expr: e}}}
}

func TestPrint_Constant(t *testing.T) {
	assert.Equal(t, "FUN INT main\n    RETURN INT 2\n", Print(program(num(2))))
}

func TestPrint_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"negation", unary(ArithmeticNegation, num(5)), "-5"},
		{"bitwise not", unary(BitwiseNegation, num(12)), "~12"},
		{"logical not", unary(LogicalNegation, num(0)), "!0"},
		{"nested unary", unary(LogicalNegation, unary(ArithmeticNegation, num(3))), "!-3"},
		{"precedence", binary(Add, num(1), binary(Mul, num(2), num(3))), "ADD(1, MUL(2, 3))"},
		{"unary operand", binary(Add, unary(ArithmeticNegation, num(1)), num(2)), "ADD(-1, 2)"},
		{"logical", binary(LogicalOr, num(1), binary(LogicalAnd, num(0), num(2))), "OR(1, AND(0, 2))"},
		{"comparisons", binary(Equal, binary(Less, num(1), num(2)), binary(GreaterEqual, num(3), num(4))), "EQ(LT(1, 2), GE(3, 4))"},
		{"remaining kinds", binary(NotEqual, binary(LessEqual, num(1), num(2)), binary(Greater, binary(Div, num(6), num(3)), binary(Sub, num(1), num(1)))), "NE(LE(1, 2), GT(DIV(6, 3), SUB(1, 1)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExprString(tt.expr))
			assert.Equal(t, "FUN INT main\n    RETURN INT "+tt.want+"\n", Print(program(tt.expr)))
		})
	}
}

func TestPrint_Includes(t *testing.T) {
	p := program(num(0))
	p.Includes = []*Include{
		{Header: "stdio.h", System: true},
		{Header: "local.h"},
	}
	want := "INCLUDE <stdio.h>\nINCLUDE \"local.h\"\nFUN INT main\n    RETURN INT 0\n"
	assert.Equal(t, want, Print(p))
}

func TestInclude_SpellingKeepsSourceText(t *testing.T) {
	assert.Equal(t, `"sys\win.h"`, (&Include{Header: `sys\win.h`}).Spelling())
	assert.Equal(t, `"café.h"`, (&Include{Header: "café.h"}).Spelling())
	assert.Equal(t, `<a\b.h>`, (&Include{Header: `a\b.h`, System: true}).Spelling())
}

func TestPrint_IsStable(t *testing.T) {
	p := program(binary(LogicalAnd, unary(BitwiseNegation, num(1)), num(7)))
	assert.Equal(t, Print(p), Print(p))
}

func TestWalk(t *testing.T) {
	e := binary(Add, unary(ArithmeticNegation, num(1)), binary(Mul, num(2), num(3)))

	var order []string
	Walk(e, func(n Expr) bool {
		switch n := n.(type) {
		case *Constant:
			order = append(order, ExprString(n))
		case *UnaryOp:
			order = append(order, n.Kind.Symbol())
		case *BinaryOp:
			order = append(order, n.Kind.String())
		}
		return true
	})
	assert.Equal(t, []string{"ADD", "-", "1", "MUL", "2", "3"}, order)
	assert.Equal(t, 6, Count(e))

	// Returning false prunes the subtree.
	visited := 0
	Walk(e, func(n Expr) bool {
		visited++
		_, isBinary := n.(*BinaryOp)
		return !isBinary || n == Expr(e)
	})
	assert.Equal(t, 4, visited)
}

func TestBinaryKind_Classes(t *testing.T) {
	assert.True(t, LogicalAnd.IsShortCircuit())
	assert.True(t, LogicalOr.IsShortCircuit())
	assert.False(t, Add.IsShortCircuit())

	for _, k := range []BinaryKind{Less, LessEqual, Greater, GreaterEqual, Equal, NotEqual} {
		assert.True(t, k.IsComparison(), k.String())
	}
	for _, k := range []BinaryKind{Add, Sub, Mul, Div, LogicalAnd, LogicalOr} {
		assert.False(t, k.IsComparison(), k.String())
	}
	assert.Equal(t, "LE", LessEqual.String())
	assert.Equal(t, "-", ArithmeticNegation.Symbol())
}
