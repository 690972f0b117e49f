package change_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/garagon/presubmit/internal/change"
	"github.com/stretchr/testify/require"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not on PATH")
	}
}

func initRepo(t *testing.T) (string, func(args ...string)) {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "test")
	run("config", "commit.gpgsign", "false")
	return dir, run
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func paths(c *change.Change) []string {
	out := c.LocalPaths()
	sort.Strings(out)
	return out
}

func TestFromGitModifiedAndUntracked(t *testing.T) {
	skipIfNoGit(t)
	dir, run := initRepo(t)

	writeFile(t, dir, "a.cc", "int a;\nint b;\n")
	writeFile(t, dir, "gone.cc", "int x;\n")
	run("add", ".")
	run("commit", "-q", "-m", "init")

	writeFile(t, dir, "a.cc", "int a;\nint c;\nint d;\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.cc")))
	writeFile(t, dir, "scripts/new.sh", "echo hi\n")

	c, err := change.FromGit(context.Background(), dir, change.GitOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"a.cc", "gone.cc", "scripts/new.sh"}, paths(c))

	for _, f := range c.Files {
		switch f.LocalPath {
		case "a.cc":
			require.Equal(t, change.Modified, f.Action)
			lines, err := f.ChangedContents()
			require.NoError(t, err)
			require.Equal(t, []change.Line{
				{Number: 2, Text: "int c;"},
				{Number: 3, Text: "int d;"},
			}, lines)
		case "gone.cc":
			require.Equal(t, change.Deleted, f.Action)
		case "scripts/new.sh":
			require.Equal(t, change.Added, f.Action)
			require.True(t, f.WholeFileChanged())
		}
	}

	c, err = change.FromGit(context.Background(), dir, change.GitOptions{SkipUntracked: true})
	require.NoError(t, err)
	require.Equal(t, []string{"a.cc", "gone.cc"}, paths(c))
}

func TestFromGitBaseIncludesLocalCommits(t *testing.T) {
	skipIfNoGit(t)
	dir, run := initRepo(t)

	writeFile(t, dir, "a.cc", "int a;\n")
	run("add", ".")
	run("commit", "-q", "-m", "init")
	run("branch", "upstream")

	writeFile(t, dir, "b.cc", "int b;\n")
	run("add", ".")
	run("commit", "-q", "-m", "local")

	c, err := change.FromGit(context.Background(), dir, change.GitOptions{})
	require.NoError(t, err)
	require.Empty(t, c.Files)

	c, err = change.FromGit(context.Background(), dir, change.GitOptions{Base: "upstream"})
	require.NoError(t, err)
	require.Equal(t, []string{"b.cc"}, paths(c))
	require.Equal(t, change.Added, c.Files[0].Action)

	_, err = change.FromGit(context.Background(), dir, change.GitOptions{Base: "no-such-branch"})
	require.Error(t, err)
}

func TestFromGitBeforeFirstCommit(t *testing.T) {
	skipIfNoGit(t)
	dir, run := initRepo(t)

	writeFile(t, dir, "staged.cc", "int s;\n")
	run("add", "staged.cc")

	c, err := change.FromGit(context.Background(), dir, change.GitOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"staged.cc"}, paths(c))
}

func TestFromGitNotARepo(t *testing.T) {
	skipIfNoGit(t)

	_, err := change.FromGit(context.Background(), t.TempDir(), change.GitOptions{})
	require.Error(t, err)
	require.True(t, errors.Is(err, change.ErrNotRepository))
}

func TestFromAll(t *testing.T) {
	skipIfNoGit(t)
	dir, run := initRepo(t)

	writeFile(t, dir, "a.cc", "int a;\n")
	writeFile(t, dir, "sub/b.sh", "echo b\n")
	run("add", ".")
	run("commit", "-q", "-m", "init")
	writeFile(t, dir, "untracked.cc", "int u;\n")

	c, err := change.FromAll(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a.cc", "sub/b.sh"}, paths(c))
	for _, f := range c.Files {
		require.True(t, f.WholeFileChanged())
	}
}

func TestFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cc", "int a;\n")
	writeFile(t, dir, "b/c.sh", "echo c\n")

	c, err := change.FromFiles(dir, []string{"a.cc", filepath.Join(dir, "b", "c.sh"), " "})
	require.NoError(t, err)
	require.Equal(t, []string{"a.cc", "b/c.sh"}, c.LocalPaths())

	lines, err := c.Files[1].ChangedContents()
	require.NoError(t, err)
	require.Equal(t, []change.Line{{Number: 1, Text: "echo c"}}, lines)

	_, err = change.FromFiles(dir, []string{"missing.cc"})
	require.Error(t, err)

	_, err = change.FromFiles(dir, []string{"b"})
	require.Error(t, err)
}

func TestFromGitIgnoresDiffPrefixConfig(t *testing.T) {
	skipIfNoGit(t)
	for _, setting := range []string{"diff.mnemonicPrefix", "diff.noprefix"} {
		t.Run(setting, func(t *testing.T) {
			dir, run := initRepo(t)
			writeFile(t, dir, "a.cc", "int a;\n")
			writeFile(t, dir, "b/c.cc", "int c;\n")
			run("add", ".")
			run("commit", "-q", "-m", "init")
			run("config", setting, "true")

			writeFile(t, dir, "a.cc", "int a;\nint b;\n")
			writeFile(t, dir, "b/c.cc", "int c;\nint d;\n")

			c, err := change.FromGit(context.Background(), dir, change.GitOptions{})
			require.NoError(t, err)
			require.Equal(t, []string{"a.cc", "b/c.cc"}, paths(c))
		})
	}
}
