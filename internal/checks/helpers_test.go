package checks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/garagon/presubmit/internal/change"
	"github.com/garagon/presubmit/internal/runner"
	"github.com/garagon/presubmit/internal/toolexec"
	"github.com/stretchr/testify/require"
)

// workspace is a temporary repository root with files for a change.
type workspace struct {
	t     *testing.T
	root  string
	files []*change.AffectedFile
}

func newWorkspace(t *testing.T) *workspace {
	return &workspace{t: t, root: t.TempDir()}
}

func (w *workspace) write(name, content string) string {
	w.t.Helper()
	path := filepath.Join(w.root, filepath.FromSlash(name))
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(w.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// whole adds a file whose every line is new.
func (w *workspace) whole(name, content string) *workspace {
	w.write(name, content)
	w.files = append(w.files, change.NewWholeFile(w.root, name, change.Added))
	return w
}

// modified adds a file where only the given lines changed.
func (w *workspace) modified(name, content string, lineNumbers ...int) *workspace {
	w.write(name, content)
	all := change.SplitLines([]byte(content))
	var lines []change.Line
	for _, n := range lineNumbers {
		lines = append(lines, change.Line{Number: n, Text: all[n-1]})
	}
	w.files = append(w.files, change.NewAffectedFile(w.root, name, change.Modified, lines))
	return w
}

func (w *workspace) deleted(name string) *workspace {
	w.files = append(w.files, change.NewAffectedFile(w.root, name, change.Deleted, nil))
	return w
}

func (w *workspace) input(exec toolexec.Executor) *runner.Input {
	return &runner.Input{Change: change.New(w.root, w.files...), Exec: exec}
}

// fakeExec records commands and answers with a scripted outcome.
type fakeExec struct {
	calls   []toolexec.Command
	respond func(cmd toolexec.Command) (*toolexec.Outcome, error)
}

func (f *fakeExec) Run(_ context.Context, cmd toolexec.Command) (*toolexec.Outcome, error) {
	f.calls = append(f.calls, cmd)
	if f.respond == nil {
		return &toolexec.Outcome{}, nil
	}
	return f.respond(cmd)
}

func (f *fakeExec) names() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Name
	}
	return out
}

func notFound(cmd toolexec.Command) (*toolexec.Outcome, error) {
	return nil, toolexec.ErrNotFound
}

func run(t *testing.T, c runner.Check, in *runner.Input) []runner.Result {
	t.Helper()
	results, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	return results
}
