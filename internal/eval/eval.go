// Package eval computes the value of a syntax tree directly. It is the
// reference the generated code is checked against: same 64-bit wrapping
// arithmetic, same short-circuit rules and the same division faults.
package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/parser/ast"
)

var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrDivisionOverflow = errors.New("division overflow")
	ErrUnsupportedNode  = errors.New("unsupported syntax node")
)

// Error is a fault raised by the evaluation of Node.
type Error struct {
	Node ast.Node
	Err  error
}

func (e *Error) Error() string {
	return e.Node.Pos().String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Span returns the source range of the faulting expression.
func (e *Error) Span() (lexer.Position, lexer.Position) {
	return e.Node.Pos(), e.Node.End()
}

// Program returns the value main would return.
func Program(p *ast.Program) (int64, error) {
	if p == nil || p.Function == nil || p.Function.Body == nil {
		return 0, fmt.Errorf("%w: empty program", ErrUnsupportedNode)
	}
	return Evaluate(p.Function.Body.Expr)
}

// Evaluate returns the value of e.
func Evaluate(e ast.Expr) (int64, error) {
	switch e := e.(type) {
	case *ast.Constant:
		return e.Value, nil
	case *ast.UnaryOp:
		return evaluateUnary(e)
	case *ast.BinaryOp:
		if e.Kind.IsShortCircuit() {
			return evaluateLogical(e)
		}
		return evaluateBinary(e)
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupportedNode, e)
}

func evaluateUnary(e *ast.UnaryOp) (int64, error) {
	v, err := Evaluate(e.Operand)
	if err != nil {
		return 0, err
	}
	switch e.Kind {
	case ast.ArithmeticNegation:
		return -v, nil
	case ast.BitwiseNegation:
		return ^v, nil
	case ast.LogicalNegation:
		return boolInt(v == 0), nil
	}
	return 0, fmt.Errorf("%w: unary %s", ErrUnsupportedNode, e.Kind)
}

func evaluateLogical(e *ast.BinaryOp) (int64, error) {
	left, err := Evaluate(e.Left)
	if err != nil {
		return 0, err
	}
	if e.Kind == ast.LogicalAnd && left == 0 {
		return 0, nil
	}
	if e.Kind == ast.LogicalOr && left != 0 {
		return 1, nil
	}
	right, err := Evaluate(e.Right)
	if err != nil {
		return 0, err
	}
	return boolInt(right != 0), nil
}

func evaluateBinary(e *ast.BinaryOp) (int64, error) {
	left, err := Evaluate(e.Left)
	if err != nil {
		return 0, err
	}
	right, err := Evaluate(e.Right)
	if err != nil {
		return 0, err
	}

	switch e.Kind {
	case ast.Add:
		return left + right, nil
	case ast.Sub:
		return left - right, nil
	case ast.Mul:
		return left * right, nil
	case ast.Div:
		if right == 0 {
			return 0, &Error{Node: e, Err: ErrDivisionByZero}
		}
		if left == math.MinInt64 && right == -1 {
			return 0, &Error{Node: e, Err: ErrDivisionOverflow}
		}
		return left / right, nil
	case ast.Less:
		return boolInt(left < right), nil
	case ast.LessEqual:
		return boolInt(left <= right), nil
	case ast.Greater:
		return boolInt(left > right), nil
	case ast.GreaterEqual:
		return boolInt(left >= right), nil
	case ast.Equal:
		return boolInt(left == right), nil
	case ast.NotEqual:
		return boolInt(left != right), nil
	}
	return 0, fmt.Errorf("%w: binary %s", ErrUnsupportedNode, e.Kind)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
