// Package checks implements the presubmit checks: whitespace and line
// length checks that run in-process, and wrappers around cpplint,
// clang-format, yapf and shellcheck.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/runner"
	"github.com/garagon/presubmit/internal/toolexec"
)

// DefaultMaxLineLength is the column limit for source lines.
const DefaultMaxLineLength = 80

var (
	// DefaultSourceFiles selects the C and C++ files handed to cpplint.
	DefaultSourceFiles = []string{`.*\.(c|cc|[hc]pp|h)$`}
	// DefaultShellFiles selects the scripts handed to shellcheck.
	DefaultShellFiles = []string{`.*\.sh$`}
)

// MissingToolPolicy decides what a missing external tool turns into.
type MissingToolPolicy string

const (
	MissingToolError   MissingToolPolicy = "error"
	MissingToolWarning MissingToolPolicy = "warning"
	MissingToolSkip    MissingToolPolicy = "skip"
)

// Tool overrides how an external tool is invoked.
type Tool struct {
	Path string   // executable to run instead of the tool's name
	Args []string // extra arguments placed before the file arguments
}

// Settings configures the check set.
type Settings struct {
	MaxLineLength int
	SourceFiles   []string // cpplint allowlist; nil means DefaultSourceFiles
	ShellFiles    []string // shellcheck allowlist; nil means DefaultShellFiles
	FilesToSkip   []string // skiplist for every check; nil means change.DefaultFilesToSkip
	LintFilters   []string // cpplint filters; nil means DefaultLintFilters
	MissingTools  MissingToolPolicy
	Timeout       time.Duration // per tool invocation; zero means toolexec.DefaultTimeout
	Tools         map[string]Tool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxLineLength: DefaultMaxLineLength,
		MissingTools:  MissingToolError,
	}
}

func (s Settings) maxLineLength() int {
	if s.MaxLineLength <= 0 {
		return DefaultMaxLineLength
	}
	return s.MaxLineLength
}

// command builds the invocation of a tool, applying any override. Extra
// arguments from an override go after the check's own leading flags.
func (s Settings) command(root, tool string, args ...string) toolexec.Command {
	name := tool
	if t, ok := s.Tools[tool]; ok {
		if t.Path != "" {
			name = t.Path
		}
		if len(t.Args) > 0 {
			args = spliceFlags(args, t.Args)
		}
	}
	return toolexec.Command{Name: name, Args: args, Dir: root, Timeout: s.Timeout}
}

// spliceFlags inserts extra after the leading dash-prefixed arguments.
func spliceFlags(args, extra []string) []string {
	i := 0
	for i < len(args) && len(args[i]) > 0 && args[i][0] == '-' {
		i++
	}
	out := make([]string, 0, len(args)+len(extra))
	out = append(out, args[:i]...)
	out = append(out, extra...)
	return append(out, args[i:]...)
}

// sourceFilter is the default allowlist combined with the configured skiplist.
func (s Settings) sourceFilter() (*change.Filter, error) {
	return change.NewFilter(nil, s.FilesToSkip)
}

func (s Settings) filter(filesToCheck, fallback []string) (*change.Filter, error) {
	if filesToCheck == nil {
		filesToCheck = fallback
	}
	return change.NewFilter(filesToCheck, s.FilesToSkip)
}

// toolFailure turns an executor error into a result. Missing tools follow
// the configured policy. Cancellation is passed back as an error.
func (s Settings) toolFailure(cmd toolexec.Command, err error) (runner.Result, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return runner.Result{}, err
	}
	if !errors.Is(err, toolexec.ErrNotFound) {
		return runner.NewError(fmt.Sprintf("%s could not be run: %v", cmd.Name, err)), nil
	}
	msg := fmt.Sprintf("%s is not installed or not on PATH.", cmd.Name)
	switch s.MissingTools {
	case MissingToolWarning:
		return runner.NewWarning(msg), nil
	case MissingToolSkip:
		return runner.NewNotify(fmt.Sprintf("Skipped: %s", msg)), nil
	default:
		return runner.NewError(msg), nil
	}
}
