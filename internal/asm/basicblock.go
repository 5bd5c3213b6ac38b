package asm

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const indent = "    "

// Block is a labelled run of instructions. Control may fall through from
// the end of a block into the next block of the function.
type Block struct {
	Label  Label
	Instrs []Instr
}

// Emit appends instructions to the block.
func (b *Block) Emit(instrs ...Instr) {
	b.Instrs = append(b.Instrs, instrs...)
}

// Terminator returns the last instruction if control cannot fall through it.
func (b *Block) Terminator() (Instr, bool) {
	if len(b.Instrs) == 0 {
		return Instr{}, false
	}
	last := b.Instrs[len(b.Instrs)-1]
	return last, last.Op.IsTerminator()
}

func (b *Block) writeTo(sb *strings.Builder) {
	sb.WriteString(string(b.Label))
	sb.WriteString(":\n")
	for _, in := range b.Instrs {
		sb.WriteString(indent)
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
}

// Function is a global function. Its first block is labelled with the
// function name.
type Function struct {
	Name   string
	Blocks []*Block
}

// NewFunction creates a function with an entry block labelled name.
func NewFunction(name string) *Function {
	return &Function{
		Name:   name,
		Blocks: []*Block{{Label: Label(name)}},
	}
}

// Entry returns the first block.
func (f *Function) Entry() *Block {
	return f.Blocks[0]
}

// NewBlock appends a block labelled label.
func (f *Function) NewBlock(label Label) *Block {
	b := &Block{Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Len returns the number of instructions in the function.
func (f *Function) Len() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
	}
	return n
}

// String renders the function, preceded by the directive exporting its
// entry label.
func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("global " + f.Name + "\n")
	for _, b := range f.Blocks {
		b.writeTo(&sb)
	}
	return sb.String()
}

// Unit is one assembly translation unit: a fixed header followed by
// functions.
type Unit struct {
	Header    string
	Functions []*Function
}

// String renders the unit as NASM source.
func (u *Unit) String() string {
	var sb strings.Builder
	sb.WriteString(u.Header)
	for _, fn := range u.Functions {
		sb.WriteString(fn.String())
	}
	return sb.String()
}

// WriteTo writes the rendered unit to w.
func (u *Unit) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, u.String())
	return int64(n), err
}

// Function returns the function called name.
func (u *Unit) Function(name string) (*Function, bool) {
	for _, fn := range u.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

var (
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrFallsOffEnd    = errors.New("control falls off the end of the function")
	ErrStackDepth     = errors.New("operand stack mismatch")
	ErrDeadCode       = errors.New("instructions after a block terminator")
)

// Verify checks the structural rules the generator relies on: labels are
// unique within the unit, every jump has a target, no path runs past the
// last block, every push is matched by a pop before ret, and paths that
// meet at a label agree on the stack depth.
func (u *Unit) Verify() error {
	var errs []error
	seen := make(map[Label]bool)
	for _, fn := range u.Functions {
		for _, b := range fn.Blocks {
			if seen[b.Label] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateLabel, b.Label))
			}
			seen[b.Label] = true
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, fn := range u.Functions {
		if err := fn.verify(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Function) verify() error {
	index := make(map[Label]int, len(f.Blocks))
	for i, b := range f.Blocks {
		index[b.Label] = i
	}

	depth := make(map[int]int, len(f.Blocks))
	depth[0] = 0
	work := []int{0}

	// enter records the stack depth at block i and queues it on first visit.
	enter := func(i, d int, from Label) error {
		if i >= len(f.Blocks) {
			return fmt.Errorf("%s: %w after %s", f.Name, ErrFallsOffEnd, from)
		}
		if prev, ok := depth[i]; ok {
			if prev != d {
				return fmt.Errorf("%s: %w at %s: %d vs %d", f.Name, ErrStackDepth, f.Blocks[i].Label, prev, d)
			}
			return nil
		}
		depth[i] = d
		work = append(work, i)
		return nil
	}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		b := f.Blocks[i]
		d := depth[i]
		for k, in := range b.Instrs {
			switch in.Op {
			case OpPush:
				d++
			case OpPop:
				d--
				if d < 0 {
					return fmt.Errorf("%s: %w: pop from empty stack in %s", f.Name, ErrStackDepth, b.Label)
				}
			case OpRet:
				if d != 0 {
					return fmt.Errorf("%s: %w: %d values left at ret in %s", f.Name, ErrStackDepth, d, b.Label)
				}
			}
			if target, ok := in.Target(); ok {
				j, defined := index[target]
				if !defined {
					return fmt.Errorf("%s: %w: %s", f.Name, ErrUndefinedLabel, target)
				}
				if err := enter(j, d, b.Label); err != nil {
					return err
				}
			}
			if in.Op.IsTerminator() && k < len(b.Instrs)-1 {
				return fmt.Errorf("%s: %w: %s in %s", f.Name, ErrDeadCode, in.Op, b.Label)
			}
		}

		if _, terminated := b.Terminator(); !terminated {
			if err := enter(i+1, d, b.Label); err != nil {
				return err
			}
		}
	}
	return nil
}
