package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/hassan/stagecc/internal/codegen"
	"github.com/hassan/stagecc/internal/config"
	"github.com/hassan/stagecc/internal/conformance"
	"github.com/hassan/stagecc/internal/driver"
	"github.com/hassan/stagecc/internal/eval"
	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/vm"
)

// CompileCmd represents the compile command
type CompileCmd struct {
	Input    string `arg:"" help:"C source file" type:"existingfile"`
	Output   string `short:"o" help:"Output file (default a.out, or a.s with --assembly)"`
	Assembly bool   `short:"S" help:"Write NASM assembly instead of an executable"`
	DumpAST  bool   `name:"dump-ast" help:"Print the syntax tree and stop"`
}

func (cmd *CompileCmd) mode() (driver.Mode, error) {
	switch {
	case cmd.Assembly && cmd.DumpAST:
		return 0, ErrConflictingModes
	case cmd.DumpAST:
		return driver.ModeDumpAST, nil
	case cmd.Assembly:
		return driver.ModeAssembly, nil
	}
	return driver.ModeExecutable, nil
}

// Run executes the compile command
func (cmd *CompileCmd) Run(ctx *Context) error {
	mode, err := cmd.mode()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := driver.Compile(sigCtx, driver.Options{
		Input:     cmd.Input,
		Output:    cmd.Output,
		Mode:      mode,
		Toolchain: cfg.Toolchain,
		Stdout:    ctx.Stdout,
		Logf:      ctx.statusf,
	})
	if err != nil {
		return err
	}

	if res.TempDir != "" {
		color.New(color.FgYellow).Fprintf(ctx.Stderr, "kept build directory %s\n", res.TempDir)
	}
	if res.Output != "" {
		ctx.statusf("✓ %s written", res.Output)
	}
	return nil
}

// TokensCmd represents the tokens command
type TokensCmd struct {
	Input string `arg:"" help:"C source file" type:"existingfile"`
}

// Run executes the tokens command
func (cmd *TokensCmd) Run(ctx *Context) error {
	source, err := os.ReadFile(cmd.Input)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	errorColor := color.New(color.FgRed)
	bad := 0
	for tok := range lexer.New(string(source), cmd.Input).Tokens() {
		pos := fmt.Sprintf("%d:%d", tok.Position.Line, tok.Position.Column)
		if tok.Type == lexer.TokenError {
			bad++
			errorColor.Fprintf(ctx.Stdout, "%-8s %-14s %-9s %q (%s)\n", pos, tok.Type, "-", tok.Lexeme, tok.Err)
			continue
		}
		fmt.Fprintf(ctx.Stdout, "%-8s %-14s %-9s %q\n", pos, tok.Type, tokenClass(tok.Type), tok.Lexeme)
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d error token(s)", ErrLexicalErrors, bad)
	}
	return nil
}

func tokenClass(tt lexer.TokenType) string {
	switch {
	case tt.IsKeyword():
		return "keyword"
	case tt.IsDirective():
		return "directive"
	case tt.IsOperator():
		return "operator"
	}
	return "-"
}

// RunCmd represents the run command
type RunCmd struct {
	Input string `arg:"" help:"C source file" type:"existingfile"`
	Eval  bool   `help:"Evaluate the syntax tree directly instead of simulating the generated code"`
}

// Run executes the run command
func (cmd *RunCmd) Run(ctx *Context) error {
	prog, err := driver.ParseFile(cmd.Input)
	if err != nil {
		return err
	}

	var value int64
	if cmd.Eval {
		ctx.statusf("evaluating %s", prog.Function.Name)
		value, err = eval.Program(prog)
		if err != nil {
			return err
		}
	} else {
		unit, err := codegen.Lower(prog)
		if err != nil {
			return err
		}
		ctx.statusf("simulating %s (%d instructions)", prog.Function.Name, unit.Functions[0].Len())
		res, err := vm.RunUnit(unit, prog.Function.Name)
		if err != nil {
			return err
		}
		ctx.statusf("executed %d steps through %v", res.Steps, res.Trace)
		for _, b := range unit.Functions[0].Blocks {
			if !res.Visited(b.Label) {
				ctx.statusf("skipped %s", b.Label)
			}
		}
		value = res.Value
	}

	fmt.Fprintf(ctx.Stdout, "%d (exit code %d)\n", value, uint8(value))
	return nil
}

// TestCmd represents the test command
type TestCmd struct {
	Stage int      `help:"Run stages 1 through N (default from config)" short:"s"`
	Dir   string   `help:"Fixture directory (default from config)" type:"path"`
	Suite []string `help:"Suites to run: lex, parse, simulate, execute (default all)"`
}

// Run executes the test command
func (cmd *TestCmd) Run(ctx *Context) error {
	cfg, err := config.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	stage := cfg.Tests.MaxStage
	if cmd.Stage != 0 {
		if cmd.Stage < 1 || cmd.Stage > config.MaxStage {
			return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidStage, cmd.Stage, config.MaxStage)
		}
		stage = cmd.Stage
	}
	dir := cfg.Tests.Dir
	if cmd.Dir != "" {
		dir = cmd.Dir
	}

	var suites []conformance.Suite
	for _, name := range cmd.Suite {
		s, err := conformance.ParseSuite(name)
		if err != nil {
			return err
		}
		suites = append(suites, s)
	}

	cases, err := conformance.Discover(dir, stage)
	if err != nil {
		return err
	}
	ctx.statusf("found %d fixtures for stages 1-%d in %s", len(cases), stage, dir)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := conformance.NewRunner(cfg)
	runner.OnResult = func(r conformance.Result) {
		if ctx.Verbose || r.Status == conformance.StatusFail {
			conformance.PrintResult(ctx.Stdout, r)
		}
	}
	summary := runner.Run(sigCtx, cases, suites...)
	summary.PrintSummary(ctx.Stdout)

	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d", ErrTestsFailed, summary.Failed, len(summary.Results))
	}
	return nil
}
