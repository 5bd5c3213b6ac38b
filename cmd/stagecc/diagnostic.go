package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/hassan/stagecc/internal/lexer"
)

// spanError is an error that points at a range of source text.
type spanError interface {
	error
	Span() (lexer.Position, lexer.Position)
}

// printDiagnostic writes err to w. When err carries a source span, the
// offending line follows with the span underlined.
func printDiagnostic(w io.Writer, err error) {
	color.New(color.FgRed).Fprint(w, "error: ")
	fmt.Fprintf(w, "%v\n", err)

	var se spanError
	if !errors.As(err, &se) {
		return
	}
	start, end := se.Span()
	if !start.IsValid() || start.Filename == "" {
		return
	}
	data, rerr := os.ReadFile(start.Filename)
	if rerr != nil {
		return
	}
	source := string(data)
	if start.Offset > len(source) {
		return
	}

	lineStart := strings.LastIndexByte(source[:start.Offset], '\n') + 1
	lineEnd := len(source)
	if i := strings.IndexByte(source[start.Offset:], '\n'); i >= 0 {
		lineEnd = start.Offset + i
	}

	width := 1
	if end.After(start) && end.Line == start.Line && end.Offset <= lineEnd {
		width = utf8.RuneCountInString(source[start.Offset:end.Offset])
	}

	// Tabs are kept so the marker lines up with the source text.
	var pad strings.Builder
	for _, r := range source[lineStart:start.Offset] {
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}

	fmt.Fprintf(w, "  %s\n  %s", source[lineStart:lineEnd], pad.String())
	color.New(color.FgGreen).Fprintln(w, strings.Repeat("^", width))
}
