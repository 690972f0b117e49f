package change_test

import (
	"strings"
	"testing"

	"github.com/garagon/presubmit/internal/change"
	"github.com/stretchr/testify/require"
)

const samplePatch = `diff --git a/a.cc b/a.cc
index 1111111..2222222 100644
--- a/a.cc
+++ b/a.cc
@@ -2,1 +2,1 @@ int main() {
-  return 1;
+  return 0;
@@ -5,0 +6,2 @@ int main() {
+// one
+// two
diff --git a/new.sh b/new.sh
new file mode 100755
index 0000000..3333333
--- /dev/null
+++ b/new.sh
@@ -0,0 +1,2 @@
+#!/bin/bash
+echo hi
diff --git a/old.cc b/old.cc
deleted file mode 100644
index 4444444..0000000
--- a/old.cc
+++ /dev/null
@@ -1,1 +0,0 @@
-int x;
`

func TestFromPatch(t *testing.T) {
	root := t.TempDir()
	c, err := change.FromPatch(root, strings.NewReader(samplePatch))
	require.NoError(t, err)
	require.Equal(t, []string{"a.cc", "new.sh", "old.cc"}, c.LocalPaths())

	modified := c.Files[0]
	require.Equal(t, change.Modified, modified.Action)
	lines, err := modified.ChangedContents()
	require.NoError(t, err)
	require.Equal(t, []change.Line{
		{Number: 2, Text: "  return 0;"},
		{Number: 6, Text: "// one"},
		{Number: 7, Text: "// two"},
	}, lines)

	added := c.Files[1]
	require.Equal(t, change.Added, added.Action)
	require.True(t, added.WholeFileChanged())
	lines, err = added.ChangedContents()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "echo hi", lines[1].Text)

	deleted := c.Files[2]
	require.Equal(t, change.Deleted, deleted.Action)
	lines, err = deleted.ChangedContents()
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestFromPatchContextLines(t *testing.T) {
	patch := `--- a/b.py
+++ b/b.py
@@ -1,3 +1,4 @@
 import os
+import sys
 
 print(os)
`
	c, err := change.FromPatch(t.TempDir(), strings.NewReader(patch))
	require.NoError(t, err)
	require.Len(t, c.Files, 1)

	lines, err := c.Files[0].ChangedContents()
	require.NoError(t, err)
	require.Equal(t, []change.Line{{Number: 2, Text: "import sys"}}, lines)
}

func TestFromPatchEmpty(t *testing.T) {
	c, err := change.FromPatch(t.TempDir(), strings.NewReader("  \n"))
	require.NoError(t, err)
	require.Empty(t, c.Files)
}
