package checks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/runner"
)

var (
	clangFormatFiles = []string{`.*\.(c|cc|cpp|cxx|c\+\+|h|hh|hpp|hxx|inl|m|mm)$`}
	pythonFiles      = []string{`.*\.py$`}
)

// lineRange is an inclusive range of 1-based line numbers.
type lineRange struct{ start, end int }

// PatchFormatted runs clang-format over changed C and C++ lines and yapf
// over changed Python lines. Each formatter that wants changes yields one
// result.
type PatchFormatted struct {
	Settings    Settings
	ClangFormat bool
	Python      bool
	// ResultFactory builds the failing result. Nil means an error.
	ResultFactory func(message string) runner.Result
}

func (*PatchFormatted) Name() string { return "patch-formatted" }
func (*PatchFormatted) Description() string {
	return "Changed C/C++ lines match clang-format and Python lines match yapf"
}

func (c *PatchFormatted) Run(ctx context.Context, in *runner.Input) ([]runner.Result, error) {
	var results []runner.Result
	if c.ClangFormat {
		res, err := c.runFormatter(ctx, in, formatter{
			tool:  "clang-format",
			files: clangFormatFiles,
			args: func(f *change.AffectedFile, ranges []lineRange) []string {
				args := []string{"--dry-run", "--Werror", "--style=file"}
				for _, r := range ranges {
					args = append(args, fmt.Sprintf("--lines=%d:%d", r.start, r.end))
				}
				return append(args, f.AbsolutePath)
			},
			fix: "clang-format -i --style=file",
		})
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	if c.Python {
		res, err := c.runFormatter(ctx, in, formatter{
			tool:  "yapf",
			files: pythonFiles,
			args: func(f *change.AffectedFile, ranges []lineRange) []string {
				args := []string{"--diff"}
				for _, r := range ranges {
					args = append(args, fmt.Sprintf("--lines=%d-%d", r.start, r.end))
				}
				return append(args, f.AbsolutePath)
			},
			fix: "yapf -i",
		})
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

type formatter struct {
	tool  string
	files []string
	// args builds the arguments for one file. ranges is nil when the whole
	// file is new.
	args func(f *change.AffectedFile, ranges []lineRange) []string
	fix  string
}

func (c *PatchFormatted) runFormatter(ctx context.Context, in *runner.Input, fm formatter) ([]runner.Result, error) {
	filter, err := c.Settings.filter(fm.files, nil)
	if err != nil {
		return nil, err
	}
	files := in.Change.AffectedFiles(filter, false)
	if len(files) == 0 {
		return nil, nil
	}

	log := in.Log()
	var (
		unformatted []string
		output      []string
		locs        []runner.Location
		results     []runner.Result
	)
	for _, f := range files {
		var ranges []lineRange
		if !f.WholeFileChanged() {
			lines, err := f.ChangedContents()
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f.LocalPath, err)
			}
			ranges = changedRanges(lines)
			if len(ranges) == 0 {
				continue
			}
		}

		cmd := c.Settings.command(in.Change.Root, fm.tool, fm.args(f, ranges)...)
		log.Debug("running formatter", "cmd", cmd.String())
		out, err := in.Exec.Run(ctx, cmd)
		if err != nil {
			res, err := c.Settings.toolFailure(cmd, err)
			if err != nil {
				return nil, err
			}
			// Files already found unformatted are still reported.
			results = append(results, res)
			break
		}
		if out.Success() {
			continue
		}
		unformatted = append(unformatted, f.LocalPath)
		locs = append(locs, runner.Location{Path: f.LocalPath})
		if text := strings.TrimRight(out.Output(), "\n"); text != "" {
			output = append(output, text)
		}
	}
	if len(unformatted) == 0 {
		return results, nil
	}

	factory := c.ResultFactory
	if factory == nil {
		factory = runner.NewError
	}
	msg := fmt.Sprintf("The %s directory requires source formatting. Please run: %s %s",
		filepath.Base(in.Change.Root), fm.fix, strings.Join(unformatted, " "))
	formatted := factory(msg).
		WithItems(unformatted...).
		WithLongText(strings.Join(output, "\n")).
		WithLocations(locs...)
	return append([]runner.Result{formatted}, results...), nil
}

// changedRanges folds changed lines into contiguous ranges.
func changedRanges(lines []change.Line) []lineRange {
	var out []lineRange
	for _, l := range lines {
		if n := len(out); n > 0 && out[n-1].end+1 == l.Number {
			out[n-1].end = l.Number
			continue
		}
		out = append(out, lineRange{start: l.Number, end: l.Number})
	}
	return out
}
