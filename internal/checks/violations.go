package checks

import (
	"fmt"
	"path"
	"strings"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/runner"
)

// lineRule reports whether a changed line is acceptable. ext is the file
// extension without the dot.
type lineRule func(ext, line string) bool

type violation struct {
	path string
	line change.Line
}

func (v violation) location() runner.Location {
	return runner.Location{Path: v.path, Line: v.line.Number}
}

// findViolations applies rule to every changed line of the non-deleted files
// accepted by filter.
func findViolations(in *runner.Input, filter *change.Filter, rule lineRule) ([]violation, error) {
	var out []violation
	for _, f := range in.Change.AffectedFiles(filter, false) {
		lines, err := f.ChangedContents()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.LocalPath, err)
		}
		ext := extension(f.LocalPath)
		for _, l := range lines {
			if !rule(ext, l.Text) {
				out = append(out, violation{path: f.LocalPath, line: l})
			}
		}
	}
	return out, nil
}

// extension returns the text after the last dot of the base name, or the
// base name itself when it has no dot (Makefile).
func extension(localPath string) string {
	base := path.Base(localPath)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:]
	}
	return base
}

func locations(vs []violation) []runner.Location {
	out := make([]runner.Location, len(vs))
	for i, v := range vs {
		out[i] = v.location()
	}
	return out
}
