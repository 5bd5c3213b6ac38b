package asm

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestInstr_String(t *testing.T) {
	tests := []struct {
		in   Instr
		want string
	}{
		{Push(Imm(2)), "push 2"},
		{Push(Imm(-7)), "push -7"},
		{Push(RAX), "push rax"},
		{Pop(RDI), "pop rdi"},
		{Mov(RAX, Imm(1 << 40)), "mov rax, 1099511627776"},
		{Neg(RAX), "neg rax"},
		{Not(RAX), "not rax"},
		{Imul(RAX, RDI), "imul rax, rdi"},
		{Cqo(), "cqo"},
		{Idiv(RDI), "idiv rdi"},
		{Cmp(RAX, Imm(0)), "cmp rax, 0"},
		{Set(OpSetge, AL), "setge al"},
		{Movzx(RAX, AL), "movzx rax, al"},
		{Jne("_and_rhs_0"), "jne _and_rhs_0"},
		{Ret(), "ret"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestOpcode_Classes(t *testing.T) {
	assert.True(t, OpSete.IsSetcc())
	assert.True(t, OpSetge.IsSetcc())
	assert.False(t, OpMovzx.IsSetcc())

	assert.True(t, OpJe.IsJump())
	assert.False(t, OpRet.IsJump())

	assert.True(t, OpJmp.IsTerminator())
	assert.True(t, OpRet.IsTerminator())
	assert.False(t, OpJne.IsTerminator())

	target, ok := Je("x").Target()
	assert.True(t, ok)
	assert.Equal(t, Label("x"), target)
	_, ok = Push(Imm(1)).Target()
	assert.False(t, ok)
}

func TestImm_FitsImm32(t *testing.T) {
	assert.True(t, Imm(0).FitsImm32())
	assert.True(t, Imm(2147483647).FitsImm32())
	assert.True(t, Imm(-2147483648).FitsImm32())
	assert.False(t, Imm(2147483648).FitsImm32())
	assert.False(t, Imm(-2147483649).FitsImm32())
}

func TestUnit_String(t *testing.T) {
	fn := NewFunction("main")
	fn.Entry().Emit(Push(Imm(1)), Pop(RAX), Cmp(RAX, Imm(0)), Je("skip"))
	fn.NewBlock("skip").Emit(Push(Imm(2)), Pop(RAX), Ret())

	u := &Unit{Header: "section .text\n", Functions: []*Function{fn}}
	want := strings.Join([]string{
		"section .text",
		"global main",
		"main:",
		"    push 1",
		"    pop rax",
		"    cmp rax, 0",
		"    je skip",
		"skip:",
		"    push 2",
		"    pop rax",
		"    ret",
		"",
	}, "\n")
	assert.Equal(t, want, u.String())
	assert.Equal(t, 7, fn.Len())
	assert.NoError(t, u.Verify())

	var sb strings.Builder
	n, err := u.WriteTo(&sb)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)

	got, ok := u.Function("main")
	assert.True(t, ok)
	assert.Equal(t, fn, got)
	_, ok = u.Function("other")
	assert.False(t, ok)
}

func TestBlock_Terminator(t *testing.T) {
	b := &Block{Label: "b"}
	_, ok := b.Terminator()
	assert.False(t, ok)

	b.Emit(Push(Imm(1)))
	_, ok = b.Terminator()
	assert.False(t, ok)

	b.Emit(Jmp("c"))
	in, ok := b.Terminator()
	assert.True(t, ok)
	assert.Equal(t, OpJmp, in.Op)
}

func TestUnit_Verify(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Function
		want  error
	}{
		{"DuplicateLabel", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Push(Imm(0)), Pop(RAX), Ret())
			fn.NewBlock("main").Emit(Ret())
			return fn
		}, ErrDuplicateLabel},
		{"UndefinedLabel", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Jmp("nowhere"))
			return fn
		}, ErrUndefinedLabel},
		{"FallsOffEnd", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Push(Imm(0)), Pop(RAX))
			return fn
		}, ErrFallsOffEnd},
		{"LeftoverAtRet", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Push(Imm(0)), Push(Imm(1)), Pop(RAX), Ret())
			return fn
		}, ErrStackDepth},
		{"PopEmpty", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Pop(RAX), Ret())
			return fn
		}, ErrStackDepth},
		{"JoinMismatch", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Push(Imm(1)), Pop(RAX), Cmp(RAX, Imm(0)), Je("join"), Push(Imm(1)))
			fn.NewBlock("join").Emit(Push(Imm(2)), Pop(RAX), Ret())
			return fn
		}, ErrStackDepth},
		{"DeadCode", func() *Function {
			fn := NewFunction("main")
			fn.Entry().Emit(Push(Imm(0)), Pop(RAX), Ret(), Push(Imm(1)))
			return fn
		}, ErrDeadCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &Unit{Functions: []*Function{tt.build()}}
			assert.IsError(t, u.Verify(), tt.want)
		})
	}
}

func TestUnit_VerifyUnreachableBlock(t *testing.T) {
	// Blocks no path reaches are not checked.
	fn := NewFunction("main")
	fn.Entry().Emit(Push(Imm(0)), Pop(RAX), Ret())
	fn.NewBlock("dead").Emit(Pop(RAX), Pop(RAX))
	u := &Unit{Functions: []*Function{fn}}
	assert.NoError(t, u.Verify())
}
