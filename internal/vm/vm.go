// Package vm executes the instruction subset produced by the code generator.
// It lets tests check generated code without an assembler or linker.
package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/hassan/stagecc/internal/asm"
)

var (
	// ErrDivideError mirrors the #DE fault raised by idiv for a zero
	// divisor or a quotient that does not fit (MinInt64 / -1).
	ErrDivideError    = errors.New("divide error")
	ErrStackUnderflow = errors.New("pop from empty stack")
	ErrStackImbalance = errors.New("stack not empty at ret")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrUnknownLabel   = errors.New("unknown label")
	ErrBadInstruction = errors.New("bad instruction")
	ErrFellOffEnd     = errors.New("execution ran past the last block")
	ErrHalted         = errors.New("machine halted")
)

// DefaultMaxSteps bounds execution of straight-line generated code.
const DefaultMaxSteps = 1 << 20

// Result is the outcome of running a function to its ret.
type Result struct {
	// Value is rax at ret.
	Value int64

	// Trace lists the labels of the blocks entered, in order.
	Trace []asm.Label

	Steps int
}

// ExitCode returns the process exit status a real run would report.
func (r Result) ExitCode() int {
	return int(uint8(r.Value))
}

// Visited reports whether the block labelled l was entered.
func (r Result) Visited(l asm.Label) bool {
	for _, t := range r.Trace {
		if t == l {
			return true
		}
	}
	return false
}

// Machine is a tiny x86-64 subset: three registers, an operand stack and
// the operands of the last cmp standing in for the flags register.
type Machine struct {
	MaxSteps int
	Halted   bool

	fn     *asm.Function
	labels map[asm.Label]int

	regs  [3]int64 // rax, rdi, rdx
	stack []int64

	cmpA, cmpB int64

	block, pc int
	steps     int
	trace     []asm.Label
}

// New prepares a machine to run fn from its entry block.
func New(fn *asm.Function) *Machine {
	m := &Machine{
		MaxSteps: DefaultMaxSteps,
		fn:       fn,
		labels:   make(map[asm.Label]int, len(fn.Blocks)),
	}
	for i, b := range fn.Blocks {
		m.labels[b.Label] = i
	}
	m.trace = append(m.trace, fn.Entry().Label)
	return m
}

// Run executes fn until ret.
func Run(fn *asm.Function) (Result, error) {
	return New(fn).Run()
}

// RunUnit executes the function called name in u.
func RunUnit(u *asm.Unit, name string) (Result, error) {
	fn, ok := u.Function(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: function %s", ErrUnknownLabel, name)
	}
	return Run(fn)
}

// Run steps the machine until it halts or faults.
func (m *Machine) Run() (Result, error) {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return Result{}, err
		}
	}
	return Result{Value: m.regs[asm.RAX], Trace: m.trace, Steps: m.steps}, nil
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.Halted {
		return ErrHalted
	}
	if m.steps >= m.MaxSteps {
		return ErrStepLimit
	}

	// Fall through empty or finished blocks.
	for m.pc >= len(m.fn.Blocks[m.block].Instrs) {
		m.block++
		m.pc = 0
		if m.block >= len(m.fn.Blocks) {
			return ErrFellOffEnd
		}
		m.trace = append(m.trace, m.fn.Blocks[m.block].Label)
	}

	b := m.fn.Blocks[m.block]
	in := b.Instrs[m.pc]
	m.pc++
	m.steps++

	if err := m.exec(in); err != nil {
		return fmt.Errorf("%s+%d: %s: %w", b.Label, m.pc-1, in, err)
	}
	return nil
}

func (m *Machine) exec(in asm.Instr) error {
	switch in.Op {
	case asm.OpPush:
		v, err := m.read(in, 0)
		if err != nil {
			return err
		}
		m.stack = append(m.stack, v)

	case asm.OpPop:
		if len(m.stack) == 0 {
			return ErrStackUnderflow
		}
		v := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		return m.write(in, 0, v)

	case asm.OpMov:
		v, err := m.read(in, 1)
		if err != nil {
			return err
		}
		return m.write(in, 0, v)

	case asm.OpMovzx:
		v, err := m.read(in, 1)
		if err != nil {
			return err
		}
		return m.write(in, 0, v&0xff)

	case asm.OpNeg, asm.OpNot:
		v, err := m.read(in, 0)
		if err != nil {
			return err
		}
		if in.Op == asm.OpNeg {
			v = -v
		} else {
			v = ^v
		}
		return m.write(in, 0, v)

	case asm.OpAdd, asm.OpSub, asm.OpImul:
		a, b, err := m.read2(in)
		if err != nil {
			return err
		}
		switch in.Op {
		case asm.OpAdd:
			a += b
		case asm.OpSub:
			a -= b
		default:
			a *= b
		}
		return m.write(in, 0, a)

	case asm.OpCqo:
		if m.regs[asm.RAX] < 0 {
			m.regs[asm.RDX] = -1
		} else {
			m.regs[asm.RDX] = 0
		}

	case asm.OpIdiv:
		d, err := m.read(in, 0)
		if err != nil {
			return err
		}
		n := m.regs[asm.RAX]
		// rdx:rax is the sign extension of rax after cqo, so the
		// dividend fits in 64 bits.
		if d == 0 || (n == math.MinInt64 && d == -1) {
			return ErrDivideError
		}
		m.regs[asm.RAX], m.regs[asm.RDX] = n/d, n%d

	case asm.OpCmp:
		a, b, err := m.read2(in)
		if err != nil {
			return err
		}
		m.cmpA, m.cmpB = a, b

	case asm.OpJmp, asm.OpJe, asm.OpJne:
		target, ok := in.Target()
		if !ok {
			return ErrBadInstruction
		}
		taken := in.Op == asm.OpJmp ||
			(in.Op == asm.OpJe && m.cmpA == m.cmpB) ||
			(in.Op == asm.OpJne && m.cmpA != m.cmpB)
		if !taken {
			return nil
		}
		i, ok := m.labels[target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownLabel, target)
		}
		m.block, m.pc = i, 0
		m.trace = append(m.trace, target)

	case asm.OpRet:
		if len(m.stack) != 0 {
			return fmt.Errorf("%w: %d values", ErrStackImbalance, len(m.stack))
		}
		m.Halted = true

	default:
		if !in.Op.IsSetcc() {
			return ErrBadInstruction
		}
		var v int64
		if m.cond(in.Op) {
			v = 1
		}
		return m.write(in, 0, v)
	}
	return nil
}

func (m *Machine) cond(op asm.Opcode) bool {
	a, b := m.cmpA, m.cmpB
	switch op {
	case asm.OpSete:
		return a == b
	case asm.OpSetne:
		return a != b
	case asm.OpSetl:
		return a < b
	case asm.OpSetle:
		return a <= b
	case asm.OpSetg:
		return a > b
	default:
		return a >= b
	}
}

func (m *Machine) read(in asm.Instr, i int) (int64, error) {
	if i >= len(in.Args) {
		return 0, ErrBadInstruction
	}
	switch a := in.Args[i].(type) {
	case asm.Imm:
		return int64(a), nil
	case asm.Reg:
		if a == asm.AL {
			return m.regs[asm.RAX] & 0xff, nil
		}
		return m.regs[a], nil
	}
	return 0, ErrBadInstruction
}

func (m *Machine) read2(in asm.Instr) (int64, int64, error) {
	a, err := m.read(in, 0)
	if err != nil {
		return 0, 0, err
	}
	b, err := m.read(in, 1)
	return a, b, err
}

func (m *Machine) write(in asm.Instr, i int, v int64) error {
	if i >= len(in.Args) {
		return ErrBadInstruction
	}
	r, ok := in.Args[i].(asm.Reg)
	if !ok {
		return ErrBadInstruction
	}
	if r == asm.AL {
		m.regs[asm.RAX] = m.regs[asm.RAX]&^0xff | v&0xff
		return nil
	}
	m.regs[r] = v
	return nil
}
