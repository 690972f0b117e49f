// Package runner runs presubmit checks against a change, one after another,
// and collects their results into a report.
package runner

import (
	"context"
	"log/slog"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/toolexec"
)

// Check is the interface every presubmit check implements.
type Check interface {
	Name() string
	Description() string
	Run(ctx context.Context, in *Input) ([]Result, error)
}

// Input is what a check gets to look at.
type Input struct {
	Change     *change.Change
	Exec       toolexec.Executor
	Committing bool // CheckChangeOnCommit rather than CheckChangeOnUpload
	Logger     *slog.Logger
}

// Event names the hook the input was built for.
func (in *Input) Event() string {
	if in.Committing {
		return EventCommit
	}
	return EventUpload
}

// Log returns the input's logger, discarding output when none is set.
func (in *Input) Log() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return in.Logger
}

const (
	EventUpload = "upload"
	EventCommit = "commit"
)
