// Package asm models the x86-64 instructions the code generator emits and
// renders them as NASM (Intel syntax) assembly text.
package asm

import (
	"strconv"
	"strings"
)

// Reg is a machine register.
type Reg int

const (
	RAX Reg = iota
	RDI
	RDX
	AL // low byte of RAX
)

var regNames = [...]string{RAX: "rax", RDI: "rdi", RDX: "rdx", AL: "al"}

func (r Reg) String() string { return regNames[r] }
func (r Reg) operand()       {}

// Imm is an immediate integer operand.
type Imm int64

func (i Imm) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Imm) operand()       {}

// FitsImm32 reports whether i can be encoded as a sign-extended 32-bit
// immediate, which is what push and most ALU instructions accept.
func (i Imm) FitsImm32() bool {
	return int64(i) >= -1<<31 && int64(i) < 1<<31
}

// Label is a reference to a block label.
type Label string

func (l Label) String() string { return string(l) }
func (l Label) operand()       {}

// Operand is a register, immediate or label.
type Operand interface {
	String() string
	operand()
}

// Opcode identifies an instruction mnemonic.
type Opcode int

const (
	OpPush Opcode = iota
	OpPop
	OpMov
	OpNeg
	OpNot
	OpAdd
	OpSub
	OpImul
	OpCqo
	OpIdiv
	OpCmp
	OpSete
	OpSetne
	OpSetl
	OpSetle
	OpSetg
	OpSetge
	OpMovzx
	OpJmp
	OpJe
	OpJne
	OpRet
)

var mnemonics = [...]string{
	OpPush:  "push",
	OpPop:   "pop",
	OpMov:   "mov",
	OpNeg:   "neg",
	OpNot:   "not",
	OpAdd:   "add",
	OpSub:   "sub",
	OpImul:  "imul",
	OpCqo:   "cqo",
	OpIdiv:  "idiv",
	OpCmp:   "cmp",
	OpSete:  "sete",
	OpSetne: "setne",
	OpSetl:  "setl",
	OpSetle: "setle",
	OpSetg:  "setg",
	OpSetge: "setge",
	OpMovzx: "movzx",
	OpJmp:   "jmp",
	OpJe:    "je",
	OpJne:   "jne",
	OpRet:   "ret",
}

func (op Opcode) String() string { return mnemonics[op] }

// IsSetcc reports whether op stores a condition into a byte register.
func (op Opcode) IsSetcc() bool { return op >= OpSete && op <= OpSetge }

// IsJump reports whether op transfers control to a label.
func (op Opcode) IsJump() bool { return op == OpJmp || op == OpJe || op == OpJne }

// IsTerminator reports whether control never falls through op.
func (op Opcode) IsTerminator() bool { return op == OpJmp || op == OpRet }

// Instr is a single instruction. Args are in Intel order: destination first.
type Instr struct {
	Op   Opcode
	Args []Operand
}

// String renders the instruction without indentation, e.g. "imul rax, rdi".
func (in Instr) String() string {
	if len(in.Args) == 0 {
		return in.Op.String()
	}
	args := make([]string, len(in.Args))
	for i, a := range in.Args {
		args[i] = a.String()
	}
	return in.Op.String() + " " + strings.Join(args, ", ")
}

// Target returns the label of a jump instruction.
func (in Instr) Target() (Label, bool) {
	if !in.Op.IsJump() || len(in.Args) != 1 {
		return "", false
	}
	l, ok := in.Args[0].(Label)
	return l, ok
}

func Push(src Operand) Instr { return Instr{Op: OpPush, Args: []Operand{src}} }
func Pop(dst Reg) Instr { return Instr{Op: OpPop, Args: []Operand{dst}} }
func Mov(dst Reg, src Operand) Instr { return Instr{Op: OpMov, Args: []Operand{dst, src}} }
func Neg(r Reg) Instr { return Instr{Op: OpNeg, Args: []Operand{r}} }
func Not(r Reg) Instr { return Instr{Op: OpNot, Args: []Operand{r}} }
func Add(dst, src Reg) Instr { return Instr{Op: OpAdd, Args: []Operand{dst, src}} }
func Sub(dst, src Reg) Instr { return Instr{Op: OpSub, Args: []Operand{dst, src}} }
func Imul(dst, src Reg) Instr { return Instr{Op: OpImul, Args: []Operand{dst, src}} }
func Cqo() Instr { return Instr{Op: OpCqo} }
func Idiv(divisor Reg) Instr { return Instr{Op: OpIdiv, Args: []Operand{divisor}} }
func Cmp(a Reg, b Operand) Instr { return Instr{Op: OpCmp, Args: []Operand{a, b}} }
func Movzx(dst, src Reg) Instr { return Instr{Op: OpMovzx, Args: []Operand{dst, src}} }
func Jmp(target Label) Instr { return Instr{Op: OpJmp, Args: []Operand{target}} }
func Je(target Label) Instr { return Instr{Op: OpJe, Args: []Operand{target}} }
func Jne(target Label) Instr { return Instr{Op: OpJne, Args: []Operand{target}} }
func Ret() Instr { return Instr{Op: OpRet} }

// Set stores the condition op (one of the setcc opcodes) into the byte register r.
func Set(op Opcode, r Reg) Instr { return Instr{Op: op, Args: []Operand{r}} }
