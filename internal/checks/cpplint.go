package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/garagon/presubmit/internal/runner"
)

// Filters that stay off whatever the configuration says.
var alwaysOffLintFilters = []string{
	"-build/include",
	"-build/include_order",
	"-build/namespaces",
	"-readability/casting",
	"-runtime/int",
	"-runtime/virtual",
	"-whitespace/braces",
}

// DefaultLintFilters are applied unless the configuration lists its own.
var DefaultLintFilters = []string{
	"-build/c++11",
	"-build/header_guard",
	"-readability/todo",
	"-runtime/references",
	"-whitespace/todo",
}

var testSourceFile = regexp.MustCompile(`.*tests?.(cc|h)$`)

// CppLint runs cpplint over changed C and C++ files. Failures are prompt
// warnings on upload and errors on commit.
type CppLint struct {
	Settings Settings
}

func (*CppLint) Name() string        { return "cpplint" }
func (*CppLint) Description() string { return "Changed C/C++ files are cpplint clean" }

func (c *CppLint) Run(ctx context.Context, in *runner.Input) ([]runner.Result, error) {
	filter, err := c.Settings.filter(c.Settings.SourceFiles, DefaultSourceFiles)
	if err != nil {
		return nil, err
	}
	files := in.Change.AffectedFiles(filter, false)
	if len(files) == 0 {
		return nil, nil
	}

	// Test sources are linted less strictly.
	var sources, tests []string
	for _, f := range files {
		if testSourceFile.MatchString(f.AbsolutePath) {
			tests = append(tests, f.AbsolutePath)
		} else {
			sources = append(sources, f.AbsolutePath)
		}
	}

	var (
		failures    []string
		toolResults []runner.Result
	)
	for _, group := range []struct {
		verbose int
		files   []string
	}{{4, sources}, {5, tests}} {
		if len(group.files) == 0 {
			continue
		}
		args := []string{
			fmt.Sprintf("--verbose=%d", group.verbose),
			fmt.Sprintf("--linelength=%d", c.Settings.maxLineLength()),
			"--filter=" + strings.Join(c.filters(), ","),
		}
		cmd := c.Settings.command(in.Change.Root, "cpplint", append(args, group.files...)...)
		in.Log().Debug("running cpplint", "files", len(group.files))
		out, err := in.Exec.Run(ctx, cmd)
		if err != nil {
			res, err := c.Settings.toolFailure(cmd, err)
			if err != nil {
				return nil, err
			}
			toolResults = append(toolResults, res)
			break
		}
		if !out.Success() {
			failures = append(failures, strings.TrimRight(out.Output(), "\n"))
		}
	}
	if len(failures) == 0 {
		return toolResults, nil
	}

	kind := runner.KindWarning
	if in.Committing {
		kind = runner.KindError
	}
	lint := runner.NewResult(kind, "Changelist failed cpplint check.").
		WithLongText(strings.Join(failures, "\n"))
	return append([]runner.Result{lint}, toolResults...), nil
}

func (c *CppLint) filters() []string {
	configured := c.Settings.LintFilters
	if configured == nil {
		configured = DefaultLintFilters
	}
	out := make([]string, 0, len(alwaysOffLintFilters)+len(configured))
	out = append(out, alwaysOffLintFilters...)
	return append(out, configured...)
}
