package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garagon/presubmit"
)

var (
	flagHook   bool
	flagCIOnly bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize presubmit configuration files",
	Long:  `Scaffolds .presubmit.yml and a GitHub Actions workflow that runs the checks on pull requests.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagHook, "hook", false, "Create a git pre-push hook that runs the upload checks")
	initCmd.Flags().BoolVar(&flagCIOnly, "ci", false, "Only generate the GitHub Actions workflow (skip config files)")
	rootCmd.AddCommand(initCmd)
}

type scaffold struct {
	path    string
	content string
	mode    os.FileMode
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	w := io.Writer(os.Stdout)
	if cmd != nil {
		w = cmd.OutOrStdout()
	}

	if flagHook {
		return initHook(w, dir)
	}

	workflow := scaffold{filepath.Join(dir, ".github", "workflows", "presubmit.yml"), workflowTemplate, 0644}
	if flagCIOnly {
		return writeScaffold(w, workflow)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	for _, f := range []scaffold{
		{filepath.Join(dir, presubmit.ConfigFileName), configTemplate, 0644},
		workflow,
	} {
		if err := writeScaffold(w, f); err != nil {
			return err
		}
	}
	return nil
}

func initHook(w io.Writer, dir string) error {
	gitDir := filepath.Join(dir, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return fmt.Errorf("no .git directory found in %s (is this a git repository?)", dir)
	}
	return writeScaffold(w, scaffold{filepath.Join(gitDir, "hooks", "pre-push"), prePushTemplate, 0755})
}

// writeScaffold creates f unless something already lives at its path.
func writeScaffold(w io.Writer, f scaffold) error {
	if _, err := os.Stat(f.path); err == nil {
		fmt.Fprintf(w, "  skip %s (already exists)\n", f.path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	fmt.Fprintf(w, "  create %s\n", f.path)
	return nil
}

const configTemplate = `# presubmit configuration

# Column limit for the long-lines check.
max_line_length: 80

# Files handed to cpplint and shellcheck (regular expressions, matched
# against the slash-separated path from the repository root).
# source_files:
#   - '.*\.(c|cc|[hc]pp|h)$'
# shell_files:
#   - '.*\.sh$'

# Files no check looks at. Leave unset for the defaults (third_party/,
# experimental/, .git/, *.diff, *.patch); an empty list checks everything.
# files_to_skip:
#   - '.*\bthird_party[\\/].*'

# cpplint filters replacing the defaults.
# lint_filters:
#   - -build/include_order

# What a linter missing from PATH turns into: error, warning, skip
missing_tools: error

# Per-tool timeout.
timeout: 5m

# Exit with code 1 if results at or above this kind: error, warning, notify
fail_on: error

# Output format: terminal, json, sarif, markdown
format: terminal

# Per-check switches.
# checks:
#   shellcheck:
#     disabled: true

# Tool overrides.
# tools:
#   clang-format:
#     path: clang-format-18
#   cpplint:
#     args: [--quiet]
`

const prePushTemplate = `#!/bin/sh
# presubmit pre-push hook
base=$(git rev-parse --abbrev-ref --symbolic-full-name '@{upstream}' 2>/dev/null || echo HEAD)
echo "Running presubmit checks against $base..."
presubmit check --base "$base" --no-color
exit $?
`

const workflowTemplate = `name: Presubmit

on:
  pull_request:
    branches: [main]

permissions:
  security-events: write
  contents: read

jobs:
  presubmit:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
        with:
          fetch-depth: 0

      - uses: actions/setup-go@v5
        with:
          go-version: stable

      - name: Install linters
        run: |
          sudo apt-get update
          sudo apt-get install -y clang-format shellcheck
          pip install cpplint yapf

      - name: Install presubmit
        run: go install github.com/garagon/presubmit/cmd/presubmit@latest

      - name: Run presubmit
        id: presubmit
        continue-on-error: true
        run: presubmit check --ci --base origin/${{ github.base_ref }} --format sarif --output results.sarif

      - name: Upload SARIF results
        if: always()
        uses: github/codeql-action/upload-sarif@v3
        with:
          sarif_file: results.sarif

      - name: Fail on errors
        if: steps.presubmit.outcome == 'failure'
        run: exit 1
`
