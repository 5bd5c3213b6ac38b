package conformance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hassan/stagecc/internal/codegen"
	"github.com/hassan/stagecc/internal/config"
	"github.com/hassan/stagecc/internal/driver"
	"github.com/hassan/stagecc/internal/eval"
	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/vm"
)

// Suite names a check run over the fixtures.
type Suite string

const (
	SuiteLex      Suite = "lex"
	SuiteParse    Suite = "parse"
	SuiteSimulate Suite = "simulate"
	SuiteExecute  Suite = "execute"
)

// AllSuites lists the suites in the order they run by default.
var AllSuites = []Suite{SuiteLex, SuiteParse, SuiteSimulate, SuiteExecute}

var ErrUnknownSuite = errors.New("unknown suite")

// ParseSuite returns the suite called name.
func ParseSuite(name string) (Suite, error) {
	for _, s := range AllSuites {
		if string(s) == strings.ToLower(name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSuite, name)
}

// Status is the outcome of one case in one suite.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	default:
		return "SKIP"
	}
}

// Result records how one case fared in one suite. Err explains a failure
// or a skip.
type Result struct {
	Suite    Suite
	Case     Case
	Status   Status
	Err      error
	Duration time.Duration
}

// Summary collects the results of a run.
type Summary struct {
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Results  []Result
}

// OK reports whether no case failed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) add(r Result) {
	switch r.Status {
	case StatusPass:
		s.Passed++
	case StatusFail:
		s.Failed++
	default:
		s.Skipped++
	}
	s.Results = append(s.Results, r)
}

// Runner runs suites over fixture cases.
type Runner struct {
	Toolchain         config.Toolchain
	ReferenceCompiler string

	// OnResult, if set, is called after every case.
	OnResult func(Result)
}

// NewRunner creates a runner using the toolchain and reference compiler
// from cfg.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		Toolchain:         cfg.Toolchain,
		ReferenceCompiler: cfg.Tests.ReferenceCompiler,
	}
}

// Run runs each suite over the cases it applies to. With no suites given
// every suite runs. Lex, Simulate and Execute only look at valid cases;
// Parse checks that valid cases parse and invalid ones do not.
func (r *Runner) Run(ctx context.Context, cases []Case, suites ...Suite) *Summary {
	if len(suites) == 0 {
		suites = AllSuites
	}
	start := time.Now()
	summary := &Summary{}

	for _, suite := range suites {
		var toolErr error
		if suite == SuiteExecute {
			toolErr = driver.Available(r.Toolchain.Assembler, r.Toolchain.Linker, r.ReferenceCompiler)
		}

		for _, c := range cases {
			if !c.Valid && suite != SuiteParse {
				continue
			}
			if err := ctx.Err(); err != nil {
				summary.add(Result{Suite: suite, Case: c, Status: StatusSkip, Err: err})
				continue
			}

			caseStart := time.Now()
			var res Result
			if toolErr != nil {
				res = Result{Status: StatusSkip, Err: toolErr}
			} else {
				res = r.runCase(ctx, suite, c)
			}
			res.Suite, res.Case = suite, c
			res.Duration = time.Since(caseStart)

			summary.add(res)
			if r.OnResult != nil {
				r.OnResult(res)
			}
		}
	}

	summary.Duration = time.Since(start)
	return summary
}

func (r *Runner) runCase(ctx context.Context, suite Suite, c Case) Result {
	var err error
	switch suite {
	case SuiteLex:
		err = lexCase(c)
	case SuiteParse:
		err = parseCase(c)
	case SuiteSimulate:
		err = simulateCase(c)
	case SuiteExecute:
		err = r.executeCase(ctx, c)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownSuite, string(suite))
	}
	if err != nil {
		return Result{Status: StatusFail, Err: err}
	}
	return Result{Status: StatusPass}
}

func lexCase(c Case) error {
	source, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	var prev lexer.Position
	for tok := range lexer.New(string(source), c.Path).Tokens() {
		if tok.Type == lexer.TokenError {
			return fmt.Errorf("lex failed on %s: '%s' (%s)", tok.Position, tok.Lexeme, tok.Err)
		}
		if tok.Position.Before(prev) {
			return fmt.Errorf("token %s out of order after %s", tok, prev)
		}
		prev = tok.Position
	}
	return nil
}

func parseCase(c Case) error {
	_, err := driver.ParseFile(c.Path)
	switch {
	case c.Valid && err != nil:
		return fmt.Errorf("parse failed: %w", err)
	case !c.Valid && err == nil:
		return errors.New("parse succeeded on invalid input")
	case !c.Valid && errors.Is(err, os.ErrNotExist):
		return err
	}
	return nil
}

// simulateCase checks that the generated code computes what the
// expression evaluates to. A program that faults must fault both ways.
func simulateCase(c Case) error {
	prog, err := driver.ParseFile(c.Path)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	want, evalErr := eval.Program(prog)

	unit, err := codegen.Lower(prog)
	if err != nil {
		return err
	}
	res, vmErr := vm.RunUnit(unit, prog.Function.Name)

	switch {
	case evalErr != nil && vmErr != nil:
		return nil
	case evalErr != nil:
		return fmt.Errorf("evaluation faulted (%v) but generated code returned %d", evalErr, res.Value)
	case vmErr != nil:
		return fmt.Errorf("generated code faulted: %w", vmErr)
	case res.Value != want:
		return fmt.Errorf("generated code returned %d, want %d", res.Value, want)
	}
	return nil
}

// executeCase builds the case with stagecc and with the reference
// compiler and compares the exit codes of the two programs.
func (r *Runner) executeCase(ctx context.Context, c Case) error {
	dir, err := os.MkdirTemp("", "stagecc-conformance-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	ours := filepath.Join(dir, "stagecc.out")
	tc := r.Toolchain
	tc.KeepTemp = false
	if _, err := driver.Compile(ctx, driver.Options{
		Input:     c.Path,
		Output:    ours,
		Mode:      driver.ModeExecutable,
		Toolchain: tc,
	}); err != nil {
		return fmt.Errorf("stagecc failed to compile: %w", err)
	}

	ref := filepath.Join(dir, "reference.out")
	if err := driver.CompileReference(ctx, r.ReferenceCompiler, c.Path, ref); err != nil {
		return fmt.Errorf("reference compiler failed: %w", err)
	}

	got, err := driver.Execute(ctx, ours)
	if err != nil {
		return fmt.Errorf("stagecc program: %w", err)
	}
	want, err := driver.Execute(ctx, ref)
	if err != nil {
		return fmt.Errorf("reference program: %w", err)
	}
	if got != want {
		return fmt.Errorf("stagecc and %s produced different exit codes: %d vs %d", r.ReferenceCompiler, got, want)
	}
	return nil
}
