// Package output formats presubmit reports for terminal (ANSI), JSON,
// SARIF, and Markdown output.
package output

import (
	"io"
	"strings"

	"github.com/garagon/presubmit/internal/types"
)

// Formatter is the interface for outputting presubmit reports.
type Formatter interface {
	Format(w io.Writer, report *types.Report) error
}

// Section order for grouped output: most severe first.
var kindOrder = []types.Kind{types.KindError, types.KindWarning, types.KindNotify}

func sectionTitle(k types.Kind) string {
	switch k {
	case types.KindError:
		return "ERRORS"
	case types.KindWarning:
		return "WARNINGS"
	default:
		return "MESSAGES"
	}
}

func filterByKind(results []types.Result, k types.Kind) []types.Result {
	var out []types.Result
	for _, r := range results {
		if r.Kind == k {
			out = append(out, r)
		}
	}
	return out
}

// verdict is the one-line summary of a report.
func verdict(report *types.Report) string {
	switch {
	case report.Count(types.KindError) > 0:
		return "There were presubmit errors."
	case report.Count(types.KindWarning) > 0:
		return "There were presubmit warnings."
	default:
		return "Presubmit checks passed."
	}
}

// fullMessage joins a result's message and items the way they are printed
// in plain text.
func fullMessage(r types.Result) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(r.Message, "\n"))
	for _, item := range r.Items {
		b.WriteString("\n  ")
		b.WriteString(item)
	}
	return b.String()
}
