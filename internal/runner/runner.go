package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgressFunc is called before each check starts. index is 1-based.
type ProgressFunc func(index, total int, name string)

// Runner holds the registered checks and runs them in order.
type Runner struct {
	checks   []Check
	disabled map[string]bool
	progress ProgressFunc
}

// New creates an empty runner.
func New() *Runner {
	return &Runner{disabled: make(map[string]bool)}
}

// Register appends a check to the pipeline.
func (r *Runner) Register(c Check) {
	r.checks = append(r.checks, c)
}

// Disable skips the named checks. Unknown names are ignored.
func (r *Runner) Disable(names ...string) {
	for _, n := range names {
		r.disabled[n] = true
	}
}

// OnProgress installs a progress callback.
func (r *Runner) OnProgress(fn ProgressFunc) {
	r.progress = fn
}

// Checks returns the registered checks that are not disabled, in run order.
func (r *Runner) Checks() []Check {
	var out []Check
	for _, c := range r.checks {
		if !r.disabled[c.Name()] {
			out = append(out, c)
		}
	}
	return out
}

// Run executes every enabled check against in, strictly one at a time. A
// check that fails to run is reported as an error result for that check and
// the run moves on. Only cancellation of ctx stops the run early.
func (r *Runner) Run(ctx context.Context, in *Input) (*Report, error) {
	if in == nil || in.Change == nil {
		return nil, errors.New("runner: input has no change")
	}
	start := time.Now()
	runID := uuid.NewString()
	checks := r.Checks()

	ctx, span := startRunSpan(ctx, runID, in.Event(), len(in.Change.Files))
	defer span.End()

	log := in.Log()
	var results []Result
	for i, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.progress != nil {
			r.progress(i+1, len(checks), c.Name())
		}

		got, elapsed, err := runCheck(ctx, c, in)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug("check failed to run", "check", c.Name(), "error", err)
			got = append(got, NewError(fmt.Sprintf("%s: %v", c.Name(), err)))
		}
		for j := range got {
			got[j].Check = c.Name()
			got[j].Duration = elapsed
		}
		log.Debug("check finished", "check", c.Name(), "results", len(got), "duration", elapsed)
		results = append(results, got...)
	}

	report := &Report{
		RunID:        runID,
		Event:        in.Event(),
		Results:      results,
		FilesChecked: len(in.Change.AffectedFiles(nil, false)),
		ChecksRun:    len(checks),
		Duration:     time.Since(start),
		Root:         in.Change.Root,
	}
	setRunSpanResult(span, report)
	return report, nil
}

func runCheck(ctx context.Context, c Check, in *Input) ([]Result, time.Duration, error) {
	ctx, span := startCheckSpan(ctx, c.Name())
	defer span.End()

	start := time.Now()
	results, err := c.Run(ctx, in)
	elapsed := time.Since(start)

	setCheckSpanResult(span, results, err)
	recordCheckMetrics(ctx, c.Name(), elapsed, results, err == nil)
	return results, elapsed, err
}
