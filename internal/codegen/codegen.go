// Package codegen translates a parsed program into x86-64 assembly text
// for NASM.
package codegen

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/hassan/stagecc/internal/parser/ast"
)

//go:embed header.nasm
var header string

// Header returns the fixed text written before the first function.
func Header() string {
	return header
}

// Generate writes the assembly for p to w.
func Generate(p *ast.Program, w io.Writer) error {
	unit, err := Lower(p)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	if _, err := unit.WriteTo(w); err != nil {
		return fmt.Errorf("codegen: write: %w", err)
	}
	return nil
}

// GenerateFile writes the assembly for p to a file at path, replacing it.
// Nothing is created if p cannot be lowered.
func GenerateFile(p *ast.Program, path string) (err error) {
	unit, err := Lower(p)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("codegen: %w", cerr)
		}
	}()
	if _, err := unit.WriteTo(f); err != nil {
		return fmt.Errorf("codegen: write: %w", err)
	}
	return nil
}
