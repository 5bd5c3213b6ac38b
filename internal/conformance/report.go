package conformance

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
)

func statusColor(s Status) *color.Color {
	switch s {
	case StatusPass:
		return passColor
	case StatusFail:
		return failColor
	default:
		return skipColor
	}
}

// PrintResult writes a one-line report of r.
func PrintResult(w io.Writer, r Result) {
	statusColor(r.Status).Fprintf(w, "--- %s", r.Status)
	fmt.Fprintf(w, ": %s %s (%.3fs)\n", r.Suite, r.Case.Name, r.Duration.Seconds())
	if r.Err != nil && r.Status == StatusFail {
		fmt.Fprintf(w, "    %v\n", r.Err)
	}
}

// PrintSummary writes the totals and lists every failed case.
func (s *Summary) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n=== Conformance Summary ===\n")
	fmt.Fprintf(w, "passed: %d, failed: %d, skipped: %d\n", s.Passed, s.Failed, s.Skipped)
	fmt.Fprintf(w, "duration: %.3fs\n", s.Duration.Seconds())

	if s.Failed > 0 {
		fmt.Fprintf(w, "\nFailed cases:\n")
		for _, r := range s.Results {
			if r.Status == StatusFail {
				fmt.Fprintf(w, "  %s %s\n", r.Suite, r.Case.Name)
				fmt.Fprintf(w, "    %v\n", r.Err)
			}
		}
		failColor.Fprintln(w, "\nSome cases failed")
		return
	}

	// Only report skipped suites once, with the first reason.
	reported := map[Suite]bool{}
	for _, r := range s.Results {
		if r.Status == StatusSkip && !reported[r.Suite] {
			reported[r.Suite] = true
			skipColor.Fprintf(w, "skipped %s: %v\n", r.Suite, r.Err)
		}
	}
	passColor.Fprintln(w, "\nAll cases passed")
}
