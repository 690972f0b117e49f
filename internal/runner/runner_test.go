package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/runner"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeCheck struct {
	name    string
	results []runner.Result
	err     error
	calls   *[]string
}

func (f *fakeCheck) Name() string        { return f.name }
func (f *fakeCheck) Description() string { return "fake " + f.name }
func (f *fakeCheck) Run(_ context.Context, in *runner.Input) ([]runner.Result, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	return f.results, f.err
}

func testInput(t *testing.T) *runner.Input {
	root := t.TempDir()
	return &runner.Input{Change: change.New(root,
		change.NewAffectedFile(root, "a.cc", change.Modified, nil),
		change.NewAffectedFile(root, "b.cc", change.Deleted, nil),
	)}
}

func TestRunInOrderAndAttributes(t *testing.T) {
	var calls []string
	r := runner.New()
	r.Register(&fakeCheck{name: "first", calls: &calls, results: []runner.Result{runner.NewNotify("hello")}})
	r.Register(&fakeCheck{name: "second", calls: &calls})
	r.Register(&fakeCheck{name: "third", calls: &calls, results: []runner.Result{
		runner.NewWarning("w"),
		runner.NewError("e"),
	}})

	report, err := r.Run(context.Background(), testInput(t))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, calls)
	require.Equal(t, 3, report.ChecksRun)
	require.Equal(t, 1, report.FilesChecked)
	require.Equal(t, runner.EventUpload, report.Event)
	require.NotEmpty(t, report.RunID)

	require.Len(t, report.Results, 3)
	require.Equal(t, "first", report.Results[0].Check)
	require.Equal(t, "third", report.Results[1].Check)
	require.Equal(t, runner.KindWarning, report.Results[1].Kind)
	require.Equal(t, runner.KindError, report.Results[2].Kind)
}

func TestCheckErrorDoesNotAbort(t *testing.T) {
	var calls []string
	r := runner.New()
	r.Register(&fakeCheck{name: "broken", calls: &calls, err: errors.New("boom")})
	r.Register(&fakeCheck{name: "after", calls: &calls, results: []runner.Result{runner.NewNotify("ok")}})

	report, err := r.Run(context.Background(), testInput(t))
	require.NoError(t, err)
	require.Equal(t, []string{"broken", "after"}, calls)
	require.Len(t, report.Results, 2)
	require.Equal(t, "broken", report.Results[0].Check)
	require.Equal(t, runner.KindError, report.Results[0].Kind)
	require.Contains(t, report.Results[0].Message, "boom")
	require.False(t, report.Passed(runner.KindError))
}

func TestDisable(t *testing.T) {
	var calls []string
	r := runner.New()
	r.Register(&fakeCheck{name: "a", calls: &calls})
	r.Register(&fakeCheck{name: "b", calls: &calls})
	r.Disable("a", "unknown")

	require.Len(t, r.Checks(), 1)
	report, err := r.Run(context.Background(), testInput(t))
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, calls)
	require.Equal(t, 1, report.ChecksRun)
}

func TestProgress(t *testing.T) {
	r := runner.New()
	r.Register(&fakeCheck{name: "a"})
	r.Register(&fakeCheck{name: "b"})

	var seen []string
	r.OnProgress(func(index, total int, name string) {
		require.Equal(t, 2, total)
		seen = append(seen, name)
	})
	_, err := r.Run(context.Background(), testInput(t))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestRunCancelled(t *testing.T) {
	r := runner.New()
	r.Register(&fakeCheck{name: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, testInput(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunRequiresChange(t *testing.T) {
	_, err := runner.New().Run(context.Background(), &runner.Input{})
	require.Error(t, err)
}

func TestCommitEvent(t *testing.T) {
	in := testInput(t)
	in.Committing = true
	report, err := runner.New().Run(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, runner.EventCommit, report.Event)
	require.Empty(t, report.Results)
	require.True(t, report.Passed(runner.KindNotify))
}

func TestRunRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := runner.New()
	r.Register(&fakeCheck{name: "tabs"})
	r.Register(&fakeCheck{name: "cpplint", err: errors.New("boom")})
	_, err := r.Run(context.Background(), testInput(t))
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	require.ElementsMatch(t, []string{
		"presubmit.check/tabs",
		"presubmit.check/cpplint",
		"presubmit.Run",
	}, names)
}
