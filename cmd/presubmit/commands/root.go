package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// ErrChecksFailed is returned when a result reached the --fail-on level.
var ErrChecksFailed = errors.New("presubmit checks failed")

var (
	flagFormat        string
	flagOutput        string
	flagNoColor       bool
	flagDisableChecks []string
	flagMaxLineLength int
)

var rootCmd = &cobra.Command{
	Use:   "presubmit",
	Short: "Lint and format checks for changed files",
	Long: `Presubmit runs whitespace, line length, clang-format, yapf, cpplint and
shellcheck checks against the files changed in a git work tree, a patch,
or an explicit file list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			checkPathHint()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "terminal", "Output format (terminal, json, sarif, markdown)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringSliceVar(&flagDisableChecks, "disable-check", nil, "Check names to disable (comma-separated, repeatable)")
	rootCmd.PersistentFlags().IntVar(&flagMaxLineLength, "max-line-length", 0, "Column limit for the long-lines check (default: 80)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
