package checks

import (
	"context"
	"fmt"

	"github.com/garagon/presubmit/internal/runner"
)

// ShellCheck runs shellcheck over each changed shell script.
type ShellCheck struct {
	Settings Settings
}

func (*ShellCheck) Name() string        { return "shellcheck" }
func (*ShellCheck) Description() string { return "Changed shell scripts are shellcheck clean" }

func (c *ShellCheck) Run(ctx context.Context, in *runner.Input) ([]runner.Result, error) {
	filter, err := c.Settings.filter(c.Settings.ShellFiles, DefaultShellFiles)
	if err != nil {
		return nil, err
	}
	var results []runner.Result
	for _, f := range in.Change.AffectedFiles(filter, false) {
		res, ran, err := c.checkFile(ctx, in, f.AbsolutePath)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if !ran {
			// The tool is unusable; one report is enough.
			break
		}
	}
	return results, nil
}

// checkFile lints one script. ran is false when shellcheck could not be run.
func (c *ShellCheck) checkFile(ctx context.Context, in *runner.Input, path string) (res runner.Result, ran bool, err error) {
	root := in.Change.Root
	cmd := c.Settings.command(root, "shellcheck", "-x", "-oall", "-sbash", path)
	name := fmt.Sprintf("Check %s file.", path)

	// Extra override arguments are for the check run, not the probe.
	probe := c.Settings.command(root, "shellcheck")
	probe.Args = []string{"--version"}
	version, err := in.Exec.Run(ctx, probe)
	if err != nil {
		res, err = c.Settings.toolFailure(cmd, err)
		return res, false, err
	}

	out, err := in.Exec.Run(ctx, cmd)
	if err != nil {
		res, err = c.Settings.toolFailure(cmd, err)
		return res, false, err
	}
	elapsed := version.Duration + out.Duration
	if out.Success() {
		return runner.NewNotify(fmt.Sprintf("%s\n%s (%4.2fs)\n", name, cmd, elapsed.Seconds())), true, nil
	}
	return runner.NewError(fmt.Sprintf("%s\n%s (%4.2fs) failed\n%s", name, cmd, elapsed.Seconds(), out.Stderr)).
		WithLongText(out.Stdout), true, nil
}
