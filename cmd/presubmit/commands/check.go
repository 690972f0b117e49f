package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/garagon/presubmit"
	"github.com/garagon/presubmit/internal/output"
	"github.com/garagon/presubmit/internal/telemetry"
)

var (
	flagCommit        bool
	flagBase          string
	flagFiles         []string
	flagAll           bool
	flagPatch         string
	flagSkipUntracked bool
	flagFailOn        string
	flagCI            bool
	flagVerbose       bool
	flagTraceOut      string
	flagMissingTools  string
)

// executor replaces the subprocess runner in tests.
var executor presubmit.Executor

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Run the presubmit checks against a change",
	Long: `Runs the presubmit checks against the change in the git work tree at path
(default: current directory). Without --base the change is the staged and
unstaged edits plus untracked files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCommit, "commit", false, "Run the commit checks instead of the upload checks")
	checkCmd.Flags().StringVar(&flagBase, "base", "", "Diff against the merge base with this revision (default: HEAD)")
	checkCmd.Flags().StringSliceVar(&flagFiles, "files", nil, "Check these files in full instead of a git diff (comma-separated)")
	checkCmd.Flags().BoolVar(&flagAll, "all", false, "Check every tracked file in full")
	checkCmd.Flags().StringVar(&flagPatch, "patch", "", "Read the change from a unified diff file (- for stdin)")
	checkCmd.Flags().BoolVar(&flagSkipUntracked, "skip-untracked", false, "Leave untracked files out of the change")
	checkCmd.Flags().StringVar(&flagFailOn, "fail-on", "error", "Exit with code 1 if a result is at or above this kind (error, warning, notify)")
	checkCmd.Flags().BoolVar(&flagCI, "ci", false, "CI mode: no color, no spinner")
	checkCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show full tool output and debug logging")
	checkCmd.Flags().StringVar(&flagTraceOut, "trace-out", "", "Write OpenTelemetry spans and metrics for the run to this file")
	checkCmd.Flags().StringVar(&flagMissingTools, "missing-tools", "", "What a missing linter turns into (error, warning, skip)")
	checkCmd.MarkFlagsMutuallyExclusive("files", "all", "patch", "base")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	ctx, cancel := contextWithInterrupt()
	defer cancel()

	c, err := loadChange(ctx, cmd.InOrStdin(), dir)
	if err != nil {
		return err
	}

	cfg, err := loadCheckConfig(cmd, c.Root)
	if err != nil {
		return err
	}
	applyCIDefaults()

	failOn, err := presubmit.ParseKind(flagFailOn)
	if err != nil {
		return fmt.Errorf("invalid --fail-on: %w", err)
	}

	if flagTraceOut != "" {
		shutdown, err := startTracing(flagTraceOut)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	opts := checkOptions(cmd, cfg)

	var spinner *output.Spinner
	if !flagCI && isatty.IsTerminal(os.Stderr.Fd()) {
		spinner = output.NewSpinner(os.Stderr)
		spinner.Start("Running presubmit checks...")
		opts = append(opts, presubmit.WithProgress(spinner.Progress))
	}
	report, err := runEvent(ctx, c, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	return finish(report, failOn, opts)
}

func runEvent(ctx context.Context, c *presubmit.Change, opts []presubmit.Option) (*presubmit.Report, error) {
	event := presubmit.EventUpload
	if flagCommit {
		event = presubmit.EventCommit
	}
	report, err := presubmit.Run(ctx, event, c, opts...)
	if err != nil {
		return nil, fmt.Errorf("presubmit failed: %w", err)
	}
	return report, nil
}

func finish(report *presubmit.Report, failOn presubmit.Kind, opts []presubmit.Option) error {
	if err := writeOutput(report, opts); err != nil {
		return err
	}
	if !report.Passed(failOn) {
		return ErrChecksFailed
	}
	return nil
}

// loadChange builds the change from whichever source the flags select.
func loadChange(ctx context.Context, stdin io.Reader, dir string) (*presubmit.Change, error) {
	switch {
	case flagPatch != "":
		return loadPatch(ctx, stdin, dir)
	case len(flagFiles) > 0:
		root := repoRoot(ctx, dir)
		paths := make([]string, 0, len(flagFiles))
		for _, f := range flagFiles {
			abs, err := filepath.Abs(strings.TrimSpace(f))
			if err != nil {
				return nil, err
			}
			paths = append(paths, abs)
		}
		return presubmit.FromFiles(root, paths)
	case flagAll:
		c, err := presubmit.FromAll(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("listing tracked files: %w", err)
		}
		return c, nil
	default:
		c, err := presubmit.FromGit(ctx, dir, presubmit.GitOptions{
			Base:          flagBase,
			SkipUntracked: flagSkipUntracked,
		})
		if err != nil {
			return nil, fmt.Errorf("getting changed files: %w", err)
		}
		return c, nil
	}
}

func loadPatch(ctx context.Context, stdin io.Reader, dir string) (*presubmit.Change, error) {
	r := stdin
	if flagPatch != "-" {
		f, err := os.Open(flagPatch)
		if err != nil {
			return nil, fmt.Errorf("opening patch: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return presubmit.FromPatch(repoRoot(ctx, dir), r)
}

// repoRoot returns the git top level containing dir, or dir itself outside
// a repository.
func repoRoot(ctx context.Context, dir string) string {
	if root, err := presubmit.RepoRoot(ctx, dir); err == nil {
		return root
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}

// loadCheckConfig reads the config at the repository root. A missing file
// yields the zero config; an unreadable or invalid one fails the run.
func loadCheckConfig(cmd *cobra.Command, root string) (presubmit.Config, error) {
	cfg, err := presubmit.LoadConfig(root)
	if err != nil {
		return presubmit.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if !cmd.Flags().Changed("format") && cfg.Format != "" {
		flagFormat = cfg.Format
	}
	if !cmd.Flags().Changed("fail-on") && cfg.FailOn != "" {
		flagFailOn = cfg.FailOn
	}
	return cfg, nil
}

func applyCIDefaults() {
	if flagCI && flagFormat == "terminal" {
		flagNoColor = true
	}
	if os.Getenv("NO_COLOR") != "" {
		flagNoColor = true
	}
}

// checkOptions turns the config and explicitly set flags into run options.
// Flags come last so they win.
func checkOptions(cmd *cobra.Command, cfg presubmit.Config) []presubmit.Option {
	opts := []presubmit.Option{presubmit.WithConfig(cfg)}
	if cmd.Flags().Changed("max-line-length") {
		opts = append(opts, presubmit.WithMaxLineLength(flagMaxLineLength))
	}
	if cmd.Flags().Changed("missing-tools") {
		opts = append(opts, presubmit.WithMissingTools(flagMissingTools))
	}
	if len(flagDisableChecks) > 0 {
		opts = append(opts, presubmit.WithDisabledChecks(flagDisableChecks...))
	}
	if flagVerbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, presubmit.WithLogger(logger))
	}
	if executor != nil {
		opts = append(opts, presubmit.WithExecutor(executor))
	}
	return opts
}

func startTracing(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	shutdown, err := telemetry.Setup(f, Version)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: writing trace: %v\n", err)
		}
		_ = f.Close()
	}, nil
}

func contextWithInterrupt() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func writeOutput(report *presubmit.Report, opts []presubmit.Option) error {
	output.ToolVersion = Version

	w := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	var formatter output.Formatter
	switch strings.ToLower(flagFormat) {
	case "json":
		formatter = &output.JSONFormatter{}
	case "sarif":
		formatter = &output.SARIFFormatter{Descriptions: checkDescriptions(opts)}
	case "markdown", "md":
		formatter = &output.MarkdownFormatter{}
	default:
		noColor := flagNoColor || !isatty.IsTerminal(w.Fd())
		formatter = &output.TerminalFormatter{NoColor: noColor, Verbose: flagVerbose}
	}
	return formatter.Format(w, report)
}

// checkDescriptions describes the checks as configured for this run, so
// settings such as the line limit show up in the rule text.
func checkDescriptions(opts []presubmit.Option) map[string]string {
	out := map[string]string{}
	for _, info := range presubmit.ListChecks(opts...) {
		out[info.Name] = info.Description
	}
	return out
}
