package codegen

import (
	"errors"
	"fmt"

	"github.com/hassan/stagecc/internal/asm"
	"github.com/hassan/stagecc/internal/parser/ast"
)

// ErrUnsupportedNode is returned for syntax tree nodes the generator does
// not know how to lower.
var ErrUnsupportedNode = errors.New("unsupported syntax node")

// generator lowers one program. Expressions follow a stack discipline: the
// code for an expression leaves exactly one value pushed on the machine
// stack, and consumers pop what they need.
type generator struct {
	fn    *asm.Function
	block *asm.Block

	// labels numbers the branch and join labels of short-circuit
	// operators. It is scoped to one run so output is deterministic.
	labels int
}

// Lower translates p into the instruction model without rendering it.
func Lower(p *ast.Program) (*asm.Unit, error) {
	if p == nil || p.Function == nil {
		return nil, fmt.Errorf("%w: empty program", ErrUnsupportedNode)
	}
	g := &generator{}
	fn, err := g.function(p.Function)
	if err != nil {
		return nil, err
	}
	unit := &asm.Unit{Header: header, Functions: []*asm.Function{fn}}
	if err := unit.Verify(); err != nil {
		return nil, err
	}
	return unit, nil
}

func (g *generator) emit(instrs ...asm.Instr) {
	g.block.Emit(instrs...)
}

func (g *generator) newLabels(prefix string) (asm.Label, asm.Label) {
	n := g.labels
	g.labels++
	return asm.Label(fmt.Sprintf("_%s_rhs_%d", prefix, n)), asm.Label(fmt.Sprintf("_%s_end_%d", prefix, n))
}

func (g *generator) function(f *ast.Function) (*asm.Function, error) {
	g.fn = asm.NewFunction(f.Name)
	g.block = g.fn.Entry()
	if f.Body == nil {
		return nil, fmt.Errorf("%w: function %s has no body", ErrUnsupportedNode, f.Name)
	}
	if err := g.statement(f.Body); err != nil {
		return nil, err
	}
	g.emit(asm.Ret())
	return g.fn, nil
}

func (g *generator) statement(s *ast.Statement) error {
	if err := g.expr(s.Expr); err != nil {
		return err
	}
	g.emit(asm.Pop(asm.RAX))
	return nil
}

func (g *generator) expr(e ast.Expr) error {
	switch e := e.(type) {
	case *ast.Constant:
		g.constant(e.Value)
		return nil
	case *ast.UnaryOp:
		return g.unary(e)
	case *ast.BinaryOp:
		if e.Kind.IsShortCircuit() {
			return g.logical(e)
		}
		return g.binary(e)
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedNode, e)
}

func (g *generator) constant(v int64) {
	imm := asm.Imm(v)
	if imm.FitsImm32() {
		g.emit(asm.Push(imm))
		return
	}
	// push only takes a sign-extended 32-bit immediate.
	g.emit(asm.Mov(asm.RAX, imm), asm.Push(asm.RAX))
}

func (g *generator) unary(e *ast.UnaryOp) error {
	if err := g.expr(e.Operand); err != nil {
		return err
	}
	g.emit(asm.Pop(asm.RAX))
	switch e.Kind {
	case ast.ArithmeticNegation:
		g.emit(asm.Neg(asm.RAX))
	case ast.BitwiseNegation:
		g.emit(asm.Not(asm.RAX))
	case ast.LogicalNegation:
		g.emit(
			asm.Cmp(asm.RAX, asm.Imm(0)),
			asm.Set(asm.OpSete, asm.AL),
			asm.Movzx(asm.RAX, asm.AL),
		)
	default:
		return fmt.Errorf("%w: unary %s", ErrUnsupportedNode, e.Kind)
	}
	g.emit(asm.Push(asm.RAX))
	return nil
}

var setcc = map[ast.BinaryKind]asm.Opcode{
	ast.Less:         asm.OpSetl,
	ast.LessEqual:    asm.OpSetle,
	ast.Greater:      asm.OpSetg,
	ast.GreaterEqual: asm.OpSetge,
	ast.Equal:        asm.OpSete,
	ast.NotEqual:     asm.OpSetne,
}

// binary lowers operators that always evaluate both operands, left first.
func (g *generator) binary(e *ast.BinaryOp) error {
	if err := g.expr(e.Left); err != nil {
		return err
	}
	if err := g.expr(e.Right); err != nil {
		return err
	}
	// The right operand was pushed last.
	g.emit(asm.Pop(asm.RDI), asm.Pop(asm.RAX))

	switch e.Kind {
	case ast.Add:
		g.emit(asm.Add(asm.RAX, asm.RDI))
	case ast.Sub:
		g.emit(asm.Sub(asm.RAX, asm.RDI))
	case ast.Mul:
		g.emit(asm.Imul(asm.RAX, asm.RDI))
	case ast.Div:
		g.emit(asm.Cqo(), asm.Idiv(asm.RDI))
	default:
		if !e.Kind.IsComparison() {
			return fmt.Errorf("%w: binary %s", ErrUnsupportedNode, e.Kind)
		}
		g.emit(
			asm.Cmp(asm.RAX, asm.RDI),
			asm.Set(setcc[e.Kind], asm.AL),
			asm.Movzx(asm.RAX, asm.AL),
		)
	}
	g.emit(asm.Push(asm.RAX))
	return nil
}

// logical lowers && and ||. The right operand is only evaluated when the
// left one does not decide the result:
//
//	&&: left == 0 -> push left (0);  else push right != 0
//	||: left != 0 -> push 1;         else push right != 0
func (g *generator) logical(e *ast.BinaryOp) error {
	if err := g.expr(e.Left); err != nil {
		return err
	}

	var rhs, end asm.Label
	g.emit(asm.Pop(asm.RAX), asm.Cmp(asm.RAX, asm.Imm(0)))
	switch e.Kind {
	case ast.LogicalAnd:
		rhs, end = g.newLabels("and")
		g.emit(asm.Jne(rhs), asm.Push(asm.RAX), asm.Jmp(end))
	case ast.LogicalOr:
		rhs, end = g.newLabels("or")
		g.emit(asm.Je(rhs), asm.Push(asm.Imm(1)), asm.Jmp(end))
	default:
		return fmt.Errorf("%w: logical %s", ErrUnsupportedNode, e.Kind)
	}

	g.block = g.fn.NewBlock(rhs)
	if err := g.expr(e.Right); err != nil {
		return err
	}
	g.emit(
		asm.Pop(asm.RAX),
		asm.Cmp(asm.RAX, asm.Imm(0)),
		asm.Set(asm.OpSetne, asm.AL),
		asm.Movzx(asm.RAX, asm.AL),
		asm.Push(asm.RAX),
	)

	g.block = g.fn.NewBlock(end)
	return nil
}
