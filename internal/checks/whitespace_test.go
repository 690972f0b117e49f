package checks_test

import (
	"testing"

	"github.com/garagon/presubmit/internal/checks"
	"github.com/stretchr/testify/require"
)

func TestCrEol(t *testing.T) {
	w := newWorkspace(t).
		whole("good.cc", "int a;\n").
		whole("cr.cc", "int a;\r\n").
		whole("noeol.h", "int a;").
		whole("twoeol.py", "x = 1\n\n").
		whole("image.png", "\r\r").
		whole("third_party/x.cc", "int a;").
		deleted("gone.cc")

	results := run(t, &checks.CrEol{}, w.input(nil))
	require.Len(t, results, 2)

	require.Equal(t, "Found a CR character in these files:", results[0].Message)
	require.Equal(t, []string{"cr.cc"}, results[0].Items)

	require.Equal(t, "These files should end in one (and only one) newline character:", results[1].Message)
	require.Equal(t, []string{"noeol.h", "twoeol.py"}, results[1].Items)
	for _, r := range results {
		require.Equal(t, "warning", r.Kind.String())
	}
}

func TestCrEolClean(t *testing.T) {
	// Files of a single byte are too short to judge.
	w := newWorkspace(t).
		whole("a.cc", "int a;\n").
		whole("empty.cc", "").
		whole("one.cc", "\n").
		whole("x.h", "x")
	require.Empty(t, run(t, &checks.CrEol{}, w.input(nil)))
}

func TestTabs(t *testing.T) {
	w := newWorkspace(t).
		modified("a.cc", "int a;\n\tint b;\n\tint c;\n", 2).
		whole("Makefile", "all:\n\tcc a.c\n").
		whole("rules.mk", "x:\n\ty\n").
		whole("b.sh", "echo\n")

	results := run(t, &checks.Tabs{}, w.input(nil))
	require.Len(t, results, 1)
	require.Equal(t, "Found a tab character in:", results[0].Message)
	require.Equal(t, "a.cc:2", results[0].LongText)
	require.Equal(t, 2, results[0].Locations[0].Line)
}

func TestTabsSkiplistOverride(t *testing.T) {
	w := newWorkspace(t).whole("third_party/x.cc", "\tint a;\n")
	require.Empty(t, run(t, &checks.Tabs{}, w.input(nil)))

	s := checks.DefaultSettings()
	s.FilesToSkip = []string{}
	require.Len(t, run(t, &checks.Tabs{Settings: s}, w.input(nil)), 1)
}

func TestTrailingWhitespace(t *testing.T) {
	w := newWorkspace(t).
		whole("a.py", "x = 1 \ny = 2\nz = 3\t\n").
		modified("b.cc", "int a; \nint b; \n", 2)

	results := run(t, &checks.TrailingWhitespace{}, w.input(nil))
	require.Len(t, results, 1)
	require.Equal(t, "Found line ending with white spaces in:", results[0].Message)
	require.Equal(t, "a.py:1\na.py:3\nb.cc:2", results[0].LongText)
	require.Len(t, results[0].Locations, 3)
}

func TestTrailingWhitespaceClean(t *testing.T) {
	w := newWorkspace(t).whole("a.sh", "echo hi\n")
	require.Empty(t, run(t, &checks.TrailingWhitespace{}, w.input(nil)))
}
