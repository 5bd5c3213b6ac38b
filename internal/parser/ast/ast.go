// Package ast defines the syntax tree produced by the parser.
//
// Expressions form a closed set: Constant, UnaryOp and BinaryOp are the only
// implementations of Expr, which consumers dispatch on with a type switch.
// Every node owns its children; subtrees are never shared.
package ast

import (
	"github.com/hassan/stagecc/internal/lexer"
)

// Node is a syntax tree node that covers a range of source text.
type Node interface {
	// Pos returns the position of the first token of the node.
	Pos() lexer.Position

	// End returns the position just past the last token of the node.
	End() lexer.Position
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Walk traverses e in pre-order, calling fn for each expression. When fn
// returns false the children of that expression are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *UnaryOp:
		Walk(e.Operand, fn)
	case *BinaryOp:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	}
}

// Count returns the number of expression nodes in e.
func Count(e Expr) int {
	n := 0
	Walk(e, func(Expr) bool {
		n++
		return true
	})
	return n
}
