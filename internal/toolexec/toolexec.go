// Package toolexec runs external tools (linters, formatters) as
// subprocesses and captures what they print and how they exit.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 5 * time.Minute

// waitDelay caps how long a killed tool's children may hold its pipes open.
const waitDelay = 2 * time.Second

var (
	// ErrNotFound is returned when the executable is not on PATH.
	ErrNotFound = errors.New("executable not found")
	// ErrTimeout is returned when a tool outlives its timeout.
	ErrTimeout = errors.New("tool timed out")
)

// Command describes one tool invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string      // appended to the current environment
	Timeout time.Duration // zero means DefaultTimeout
}

// String renders the command line the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// Outcome is what a finished tool left behind. A non-zero ExitCode is a
// normal outcome, not an error.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the tool exited with status zero.
func (o *Outcome) Success() bool {
	return o.ExitCode == 0
}

// Output returns stderr, or stdout when the tool wrote nothing to stderr.
func (o *Outcome) Output() string {
	if strings.TrimSpace(o.Stderr) != "" {
		return o.Stderr
	}
	return o.Stdout
}

// Executor runs commands.
type Executor interface {
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd Command) (*Outcome, error)

// Run calls f.
func (f ExecutorFunc) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	return f(ctx, cmd)
}

// OS runs commands with os/exec.
type OS struct{}

// New returns the executor that runs real processes.
func New() *OS {
	return &OS{}
}

// Run resolves the executable, runs it to completion, and reports its exit
// status. The returned error is non-nil only when the tool could not be run
// at all.
func (*OS) Run(ctx context.Context, c Command) (*Outcome, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c.Name)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	out := &Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, c)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", c.Name, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}
	return out, nil
}

// Available reports whether name resolves to an executable.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
