package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hassan/stagecc/internal/config"
)

var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolFailed   = errors.New("tool failed")
)

// Toolchain runs the external programs that turn assembly into an
// executable and run it.
type Toolchain struct {
	cfg config.Toolchain
}

// NewToolchain creates a toolchain from configuration.
func NewToolchain(cfg config.Toolchain) *Toolchain {
	return &Toolchain{cfg: cfg}
}

// Assemble assembles the NASM file src into the object file obj.
func (t *Toolchain) Assemble(ctx context.Context, src, obj string) error {
	args := append(append([]string{}, t.cfg.AssemblerArgs...), src, "-o", obj)
	return run(ctx, t.cfg.Assembler, args)
}

// Link links the object file obj into the executable exe.
func (t *Toolchain) Link(ctx context.Context, obj, exe string) error {
	args := append(append([]string{}, t.cfg.LinkerArgs...), obj, "-o", exe)
	return run(ctx, t.cfg.Linker, args)
}

// CompileReference builds the C file src into exe with the reference
// compiler cc.
func CompileReference(ctx context.Context, cc, src, exe string) error {
	return run(ctx, cc, []string{src, "-o", exe})
}

// Available reports whether every named program can be found on PATH.
func Available(programs ...string) error {
	var errs []error
	for _, p := range programs {
		if _, err := exec.LookPath(p); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrToolNotFound, p))
		}
	}
	return errors.Join(errs...)
}

// Execute runs the program exe and returns its exit status. A non-zero
// status is not an error.
func Execute(ctx context.Context, exe string) (int, error) {
	cmd := exec.CommandContext(ctx, exe)
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// Killed by a signal.
		return -1, fmt.Errorf("%w: %s: %v", ErrToolFailed, exe, err)
	}
	if err != nil {
		return -1, fmt.Errorf("run %s: %w", exe, err)
	}
	return 0, nil
}

func run(ctx context.Context, name string, args []string) error {
	if name == "" {
		return fmt.Errorf("%w: empty command", ErrToolNotFound)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%w: %s: %v", ErrToolFailed, name, err)
		}
		return fmt.Errorf("%w: %s: %v\n%s", ErrToolFailed, name, err, msg)
	}
	return nil
}
