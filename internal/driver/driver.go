// Package driver runs the compile pipeline for one source file: read,
// parse, then dump the tree, write assembly, or assemble and link an
// executable with the external toolchain.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hassan/stagecc/internal/codegen"
	"github.com/hassan/stagecc/internal/config"
	"github.com/hassan/stagecc/internal/parser"
	"github.com/hassan/stagecc/internal/parser/ast"
)

// Mode selects what Compile produces.
type Mode int

const (
	ModeExecutable Mode = iota
	ModeAssembly
	ModeDumpAST
)

func (m Mode) String() string {
	switch m {
	case ModeExecutable:
		return "executable"
	case ModeAssembly:
		return "assembly"
	case ModeDumpAST:
		return "dump-ast"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Default output paths.
const (
	DefaultAssemblyOutput   = "a.s"
	DefaultExecutableOutput = "a.out"
)

// Options configures one compilation.
type Options struct {
	Input  string
	Output string // empty selects the mode's default
	Mode   Mode

	Toolchain config.Toolchain

	// Stdout receives the tree in ModeDumpAST.
	Stdout io.Writer

	// Logf, if set, receives one line per pipeline phase.
	Logf func(format string, args ...any)
}

// Result describes what Compile produced.
type Result struct {
	Output string

	// TempDir is the kept build directory, empty unless keep_temp is set.
	TempDir string
}

// ParseFile reads and parses the C file at path.
func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return parser.ParseString(string(source), path)
}

// Compile runs the pipeline described by opts.
func Compile(ctx context.Context, opts Options) (*Result, error) {
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	prog, err := ParseFile(opts.Input)
	if err != nil {
		return nil, err
	}
	logf("parsed %s (%d expression nodes)", opts.Input, ast.Count(prog.Function.Body.Expr))

	switch opts.Mode {
	case ModeDumpAST:
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := io.WriteString(w, ast.Print(prog)); err != nil {
			return nil, fmt.Errorf("dump ast: %w", err)
		}
		return &Result{}, nil

	case ModeAssembly:
		out := opts.Output
		if out == "" {
			out = DefaultAssemblyOutput
		}
		if err := codegen.GenerateFile(prog, out); err != nil {
			return nil, err
		}
		logf("wrote %s", out)
		return &Result{Output: out}, nil

	case ModeExecutable:
		return build(ctx, prog, opts, logf)
	}
	return nil, fmt.Errorf("unknown mode %s", opts.Mode)
}

func build(ctx context.Context, prog *ast.Program, opts Options, logf func(string, ...any)) (res *Result, err error) {
	out := opts.Output
	if out == "" {
		out = DefaultExecutableOutput
	}

	tmp, err := os.MkdirTemp("", "stagecc-*")
	if err != nil {
		return nil, fmt.Errorf("create build directory: %w", err)
	}
	res = &Result{Output: out}
	if opts.Toolchain.KeepTemp {
		res.TempDir = tmp
	} else {
		defer func() {
			if rerr := os.RemoveAll(tmp); rerr != nil && err == nil {
				err = fmt.Errorf("remove build directory: %w", rerr)
			}
		}()
	}

	name := stem(opts.Input)
	asmPath := filepath.Join(tmp, name+".s")
	objPath := filepath.Join(tmp, name+".o")

	if err := codegen.GenerateFile(prog, asmPath); err != nil {
		return nil, err
	}
	logf("generated %s", asmPath)

	tc := NewToolchain(opts.Toolchain)
	if err := tc.Assemble(ctx, asmPath, objPath); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	logf("assembled %s", objPath)

	if err := tc.Link(ctx, objPath, out); err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	logf("linked %s", out)

	return res, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	if s := base[:len(base)-len(filepath.Ext(base))]; s != "" {
		return s
	}
	return "out"
}
