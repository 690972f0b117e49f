package checks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/garagon/presubmit/internal/runner"
)

// CrEol flags CR characters and files that do not end in exactly one
// newline.
type CrEol struct {
	Settings Settings
}

func (*CrEol) Name() string { return "cr-eol" }
func (*CrEol) Description() string {
	return "Source files contain no CR characters and end in exactly one newline"
}

func (c *CrEol) Run(_ context.Context, in *runner.Input) ([]runner.Result, error) {
	filter, err := c.Settings.sourceFilter()
	if err != nil {
		return nil, err
	}
	var crFiles, eofFiles []string
	for _, f := range in.Change.AffectedFiles(filter, false) {
		data, err := f.NewContents()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.LocalPath, err)
		}
		if bytes.IndexByte(data, '\r') >= 0 {
			crFiles = append(crFiles, f.LocalPath)
		}
		if len(data) > 1 && (data[len(data)-1] != '\n' || data[len(data)-2] == '\n') {
			eofFiles = append(eofFiles, f.LocalPath)
		}
	}

	var results []runner.Result
	if len(crFiles) > 0 {
		results = append(results, runner.NewWarning("Found a CR character in these files:").
			WithItems(crFiles...).
			WithLocations(fileLocations(crFiles)...))
	}
	if len(eofFiles) > 0 {
		results = append(results, runner.NewWarning("These files should end in one (and only one) newline character:").
			WithItems(eofFiles...).
			WithLocations(fileLocations(eofFiles)...))
	}
	return results, nil
}

// Tabs flags changed lines that contain a tab. Makefiles are exempt.
type Tabs struct {
	Settings Settings
}

func (*Tabs) Name() string { return "tabs" }
func (*Tabs) Description() string {
	return "Changed lines contain no tab characters (Makefiles exempt)"
}

func (c *Tabs) Run(_ context.Context, in *runner.Input) ([]runner.Result, error) {
	base, err := c.Settings.sourceFilter()
	if err != nil {
		return nil, err
	}
	filter, err := base.Without(`(^|.*?[\\/])(Makefile|makefile)$`, `.+\.mk$`)
	if err != nil {
		return nil, err
	}
	found, err := findViolations(in, filter, func(_, line string) bool {
		return !strings.Contains(line, "\t")
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return []runner.Result{
		runner.NewWarning("Found a tab character in:").
			WithLongText(fileAndLines(found)).
			WithLocations(locations(found)...),
	}, nil
}

// TrailingWhitespace flags changed lines that end in white space.
type TrailingWhitespace struct {
	Settings Settings
}

func (*TrailingWhitespace) Name() string        { return "trailing-whitespace" }
func (*TrailingWhitespace) Description() string { return "Changed lines do not end with white space" }

func (c *TrailingWhitespace) Run(_ context.Context, in *runner.Input) ([]runner.Result, error) {
	filter, err := c.Settings.sourceFilter()
	if err != nil {
		return nil, err
	}
	found, err := findViolations(in, filter, func(_, line string) bool {
		return strings.TrimRightFunc(line, unicode.IsSpace) == line
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return []runner.Result{
		runner.NewWarning("Found line ending with white spaces in:").
			WithLongText(fileAndLines(found)).
			WithLocations(locations(found)...),
	}, nil
}

// fileAndLines renders violations as "path:line" rows.
func fileAndLines(vs []violation) string {
	rows := make([]string, len(vs))
	for i, v := range vs {
		rows[i] = fmt.Sprintf("%s:%d", v.path, v.line.Number)
	}
	return strings.Join(rows, "\n")
}

func fileLocations(paths []string) []runner.Location {
	out := make([]runner.Location, len(paths))
	for i, p := range paths {
		out[i] = runner.Location{Path: path.Clean(p)}
	}
	return out
}
