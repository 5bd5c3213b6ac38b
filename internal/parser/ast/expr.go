package ast

import (
	"strconv"

	"github.com/hassan/stagecc/internal/lexer"
)

// Constant is an integer literal.
type Constant struct {
	Value    int64
	ValuePos lexer.Position
	Literal  string // source text of the literal
}

func (c *Constant) Pos() lexer.Position { return c.ValuePos }
func (c *Constant) End() lexer.Position {
	end := c.ValuePos
	end.Offset += len(c.Literal)
	end.Column += len(c.Literal)
	return end
}
func (c *Constant) exprNode() {}

// UnaryKind enumerates the prefix operators.
type UnaryKind int

const (
	ArithmeticNegation UnaryKind = iota // -
	BitwiseNegation                     // ~
	LogicalNegation                     // !
)

var unarySymbols = [...]string{
	ArithmeticNegation: "-",
	BitwiseNegation:    "~",
	LogicalNegation:    "!",
}

// Symbol returns the source spelling of the operator.
func (k UnaryKind) Symbol() string { return unarySymbols[k] }

func (k UnaryKind) String() string {
	switch k {
	case ArithmeticNegation:
		return "ArithmeticNegation"
	case BitwiseNegation:
		return "BitwiseNegation"
	case LogicalNegation:
		return "LogicalNegation"
	}
	return "UnaryKind(?)"
}

// UnaryOp applies a prefix operator to its operand.
type UnaryOp struct {
	Kind    UnaryKind
	OpPos   lexer.Position
	Operand Expr
}

func (u *UnaryOp) Pos() lexer.Position { return u.OpPos }
func (u *UnaryOp) End() lexer.Position { return u.Operand.End() }
func (u *UnaryOp) exprNode()           {}

// BinaryKind enumerates the infix operators.
type BinaryKind int

const (
	Add BinaryKind = iota
	Sub
	Mul
	Div
	LogicalAnd
	LogicalOr
	Less
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
)

var binaryNames = [...]string{
	Add:          "ADD",
	Sub:          "SUB",
	Mul:          "MUL",
	Div:          "DIV",
	LogicalAnd:   "AND",
	LogicalOr:    "OR",
	Less:         "LT",
	LessEqual:    "LE",
	Greater:      "GT",
	GreaterEqual: "GE",
	Equal:        "EQ",
	NotEqual:     "NE",
}

// String returns the short upper-case name used by the printer.
func (k BinaryKind) String() string {
	if k >= 0 && int(k) < len(binaryNames) {
		return binaryNames[k]
	}
	return "BinaryKind(" + strconv.Itoa(int(k)) + ")"
}

// IsShortCircuit reports whether the right operand is evaluated conditionally.
func (k BinaryKind) IsShortCircuit() bool {
	return k == LogicalAnd || k == LogicalOr
}

// IsComparison reports whether the operator produces a 0/1 comparison result.
func (k BinaryKind) IsComparison() bool {
	return k >= Less && k <= NotEqual
}

// BinaryOp applies an infix operator to two operands.
type BinaryOp struct {
	Kind  BinaryKind
	OpPos lexer.Position
	Left  Expr
	Right Expr
}

func (b *BinaryOp) Pos() lexer.Position { return b.Left.Pos() }
func (b *BinaryOp) End() lexer.Position { return b.Right.End() }
func (b *BinaryOp) exprNode()           {}
