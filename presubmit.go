// Package presubmit runs lint and formatting checks against the files
// changed in a proposed commit: whitespace and line length checks, cpplint,
// clang-format and yapf, and shellcheck.
//
// This is the library entry point. For the CLI tool, see cmd/presubmit/.
package presubmit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/checks"
	"github.com/garagon/presubmit/internal/config"
	"github.com/garagon/presubmit/internal/runner"
	"github.com/garagon/presubmit/internal/toolexec"
	"github.com/garagon/presubmit/internal/types"
)

// Re-export core types so consumers don't need to import internal packages.
type (
	Kind          = types.Kind
	Result        = types.Result
	Location      = types.Location
	Report        = types.Report
	Change        = change.Change
	AffectedFile  = change.AffectedFile
	Config        = config.Config
	CheckOverride = config.CheckOverride
	ToolOverride  = config.ToolOverride
	Executor      = toolexec.Executor
	ExecutorFunc  = toolexec.ExecutorFunc
	Command       = toolexec.Command
	Outcome       = toolexec.Outcome
	GitOptions    = change.GitOptions
)

const (
	KindNotify  = types.KindNotify
	KindWarning = types.KindWarning
	KindError   = types.KindError

	EventUpload = runner.EventUpload
	EventCommit = runner.EventCommit
)

var (
	ParseKind  = types.ParseKind
	LoadConfig = config.Load
	// ConfigFileName is the preferred config file name.
	ConfigFileName = config.FileNames[0]
	CheckNames     = checks.Names

	ErrToolNotFound  = toolexec.ErrNotFound
	ErrToolTimeout   = toolexec.ErrTimeout
	ErrNotRepository = change.ErrNotRepository
)

// CheckInfo describes one check.
type CheckInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// FromGit loads the change in the git work tree containing dir.
func FromGit(ctx context.Context, dir string, opts GitOptions) (*Change, error) {
	return change.FromGit(ctx, dir, opts)
}

// RepoRoot returns the top level of the git work tree containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	return change.Toplevel(ctx, dir)
}

// FromAll loads every tracked file of the work tree containing dir as changed.
func FromAll(ctx context.Context, dir string) (*Change, error) {
	return change.FromAll(ctx, dir)
}

// FromFiles builds a change where every line of the given files is changed.
func FromFiles(root string, paths []string) (*Change, error) {
	return change.FromFiles(root, paths)
}

// FromPatch builds a change from a unified diff applied under root.
func FromPatch(root string, r io.Reader) (*Change, error) {
	return change.FromPatch(root, r)
}

// CheckChangeOnUpload runs the checks for a change that is about to be
// uploaded for review.
func CheckChangeOnUpload(ctx context.Context, c *Change, opts ...Option) (*Report, error) {
	return Run(ctx, EventUpload, c, opts...)
}

// CheckChangeOnCommit runs the checks for a change that is about to land.
// The check set is the same as on upload; some checks report more severely.
func CheckChangeOnCommit(ctx context.Context, c *Change, opts ...Option) (*Report, error) {
	return Run(ctx, EventCommit, c, opts...)
}

// Run executes the check set for the given event ("upload" or "commit").
// Checks run one after another; a failing check never stops the others.
func Run(ctx context.Context, event string, c *Change, opts ...Option) (*Report, error) {
	if c == nil {
		return nil, fmt.Errorf("presubmit: nil change")
	}
	var committing bool
	switch event {
	case EventUpload:
	case EventCommit:
		committing = true
	default:
		return nil, fmt.Errorf("presubmit: unknown event %q (want %s or %s)", event, EventUpload, EventCommit)
	}

	cfg := applyOpts(opts)
	r, err := buildRunner(cfg)
	if err != nil {
		return nil, err
	}

	exec := cfg.exec
	if exec == nil {
		exec = toolexec.New()
	}
	return r.Run(ctx, &runner.Input{
		Change:     c,
		Exec:       exec,
		Committing: committing,
		Logger:     cfg.logger,
	})
}

// ListChecks returns the checks in run order, marking disabled ones.
func ListChecks(opts ...Option) []CheckInfo {
	cfg := applyOpts(opts)
	disabled := make(map[string]bool, len(cfg.disabledChecks))
	for _, name := range cfg.disabledChecks {
		disabled[strings.TrimSpace(name)] = true
	}
	all := checks.Default(cfg.settings)
	infos := make([]CheckInfo, len(all))
	for i, c := range all {
		infos[i] = CheckInfo{
			Name:        c.Name(),
			Description: c.Description(),
			Enabled:     !disabled[c.Name()],
		}
	}
	return infos
}

// --- internal helpers ---

func applyOpts(opts []Option) *runConfig {
	cfg := &runConfig{settings: checks.DefaultSettings()}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// buildRunner creates a runner with the default checks registered and the
// configured ones disabled. File patterns are compiled up front so a bad
// pattern fails the run instead of every check.
func buildRunner(cfg *runConfig) (*runner.Runner, error) {
	s := cfg.settings
	patterns := []struct {
		name  string
		check []string
	}{
		{"source_files", s.SourceFiles},
		{"shell_files", s.ShellFiles},
	}
	for _, p := range patterns {
		if p.check == nil {
			continue
		}
		if _, err := change.NewFilter(p.check, []string{}); err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}
	if _, err := change.NewFilter(nil, s.FilesToSkip); err != nil {
		return nil, err
	}
	switch s.MissingTools {
	case checks.MissingToolError, checks.MissingToolWarning, checks.MissingToolSkip:
	default:
		return nil, fmt.Errorf("unknown missing tool policy %q", s.MissingTools)
	}

	r := runner.New()
	known := map[string]bool{}
	for _, c := range checks.Default(s) {
		r.Register(c)
		known[c.Name()] = true
	}
	for _, name := range cfg.disabledChecks {
		name = strings.TrimSpace(name)
		if !known[name] {
			fmt.Fprintf(os.Stderr, "presubmit: warning: unknown check %q\n", name)
			continue
		}
		r.Disable(name)
	}
	if cfg.progress != nil {
		r.OnProgress(cfg.progress)
	}
	return r, nil
}
