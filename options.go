package presubmit

import (
	"log/slog"
	"time"

	"github.com/garagon/presubmit/internal/checks"
)

// runConfig holds the resolved configuration for a run.
type runConfig struct {
	settings       checks.Settings
	disabledChecks []string
	exec           Executor
	logger         *slog.Logger
	progress       func(index, total int, name string)
}

// Option configures a presubmit run.
type Option func(*runConfig)

// WithConfig applies a loaded .presubmit.yml. Options given after it
// override its values.
func WithConfig(c Config) Option {
	return func(rc *runConfig) {
		if c.MaxLineLength > 0 {
			rc.settings.MaxLineLength = c.MaxLineLength
		}
		if c.SourceFiles != nil {
			rc.settings.SourceFiles = c.SourceFiles
		}
		if c.ShellFiles != nil {
			rc.settings.ShellFiles = c.ShellFiles
		}
		if c.FilesToSkip != nil {
			rc.settings.FilesToSkip = c.FilesToSkip
		}
		if c.LintFilters != nil {
			rc.settings.LintFilters = c.LintFilters
		}
		if c.MissingTools != "" {
			rc.settings.MissingTools = checks.MissingToolPolicy(c.MissingTools)
		}
		if d := c.TimeoutDuration(); d > 0 {
			rc.settings.Timeout = d
		}
		if len(c.Tools) > 0 {
			tools := make(map[string]checks.Tool, len(c.Tools))
			for name, t := range c.Tools {
				tools[name] = checks.Tool{Path: t.Path, Args: t.Args}
			}
			rc.settings.Tools = tools
		}
		rc.disabledChecks = append(rc.disabledChecks, c.DisabledChecks()...)
	}
}

// WithMaxLineLength sets the column limit (default 80).
func WithMaxLineLength(n int) Option {
	return func(c *runConfig) {
		c.settings.MaxLineLength = n
	}
}

// WithSourceFiles replaces the patterns selecting files for cpplint.
func WithSourceFiles(patterns ...string) Option {
	return func(c *runConfig) {
		c.settings.SourceFiles = patterns
	}
}

// WithShellFiles replaces the patterns selecting files for shellcheck.
func WithShellFiles(patterns ...string) Option {
	return func(c *runConfig) {
		c.settings.ShellFiles = patterns
	}
}

// WithFilesToSkip replaces the skiplist applied by every check. Pass no
// patterns to check everything.
func WithFilesToSkip(patterns ...string) Option {
	return func(c *runConfig) {
		c.settings.FilesToSkip = append([]string{}, patterns...)
	}
}

// WithLintFilters replaces the default cpplint filters.
func WithLintFilters(filters ...string) Option {
	return func(c *runConfig) {
		c.settings.LintFilters = append([]string{}, filters...)
	}
}

// WithMissingTools sets what a missing external tool turns into: "error"
// (default), "warning", or "skip".
func WithMissingTools(policy string) Option {
	return func(c *runConfig) {
		c.settings.MissingTools = checks.MissingToolPolicy(policy)
	}
}

// WithToolTimeout bounds each external tool invocation.
func WithToolTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.settings.Timeout = d
	}
}

// WithTool overrides the executable and extra arguments of an external tool
// (clang-format, yapf, cpplint, shellcheck).
func WithTool(name, path string, args ...string) Option {
	return func(c *runConfig) {
		tools := make(map[string]checks.Tool, len(c.settings.Tools)+1)
		for k, v := range c.settings.Tools {
			tools[k] = v
		}
		tools[name] = checks.Tool{Path: path, Args: args}
		c.settings.Tools = tools
	}
}

// WithDisabledChecks skips the named checks.
func WithDisabledChecks(names ...string) Option {
	return func(c *runConfig) {
		c.disabledChecks = append(c.disabledChecks, names...)
	}
}

// WithExecutor replaces the subprocess runner, typically in tests.
func WithExecutor(e Executor) Option {
	return func(c *runConfig) {
		c.exec = e
	}
}

// WithLogger sets the logger for diagnostic output.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// WithProgress installs a callback invoked before each check runs.
func WithProgress(fn func(index, total int, name string)) Option {
	return func(c *runConfig) {
		c.progress = fn
	}
}
