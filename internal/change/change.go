// Package change models the set of files touched by a proposed commit:
// which files were added, modified, or deleted, and which of their lines
// are new. Changes are loaded from git, from a unified diff, or from an
// explicit file list.
package change

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Action is what the change did to a file.
type Action string

const (
	Added    Action = "A"
	Modified Action = "M"
	Deleted  Action = "D"
)

// Line is a changed line in the new version of a file.
type Line struct {
	Number int    // 1-based
	Text   string // without the trailing newline
}

// AffectedFile is one file in the change.
type AffectedFile struct {
	LocalPath    string // slash-separated, relative to the change root
	AbsolutePath string
	Action       Action

	changed    []Line
	wholeFile  bool
	once       sync.Once
	contents   []byte
	contentErr error
}

// NewAffectedFile describes a file whose changed lines are already known.
func NewAffectedFile(root, localPath string, action Action, changed []Line) *AffectedFile {
	return &AffectedFile{
		LocalPath:    filepath.ToSlash(localPath),
		AbsolutePath: filepath.Join(root, filepath.FromSlash(localPath)),
		Action:       action,
		changed:      changed,
	}
}

// NewWholeFile describes a file where every line counts as changed
// (new files, --files and --all runs).
func NewWholeFile(root, localPath string, action Action) *AffectedFile {
	f := NewAffectedFile(root, localPath, action, nil)
	f.wholeFile = true
	return f
}

// NewContents returns the file's current bytes on disk. Deleted files have
// no contents. The read happens once.
func (f *AffectedFile) NewContents() ([]byte, error) {
	if f.Action == Deleted {
		return nil, nil
	}
	f.once.Do(func() {
		f.contents, f.contentErr = os.ReadFile(f.AbsolutePath)
	})
	return f.contents, f.contentErr
}

// NewLines returns the current file split into lines. Line terminators,
// including a trailing CR, are removed.
func (f *AffectedFile) NewLines() ([]string, error) {
	data, err := f.NewContents()
	if err != nil {
		return nil, err
	}
	return SplitLines(data), nil
}

// ChangedContents returns the new or modified lines of the file.
func (f *AffectedFile) ChangedContents() ([]Line, error) {
	if f.Action == Deleted {
		return nil, nil
	}
	if !f.wholeFile {
		return f.changed, nil
	}
	lines, err := f.NewLines()
	if err != nil {
		return nil, err
	}
	out := make([]Line, len(lines))
	for i, text := range lines {
		out[i] = Line{Number: i + 1, Text: text}
	}
	return out, nil
}

// WholeFileChanged reports whether every line of the file is new.
func (f *AffectedFile) WholeFileChanged() bool {
	return f.wholeFile || f.Action == Added
}

// Change is the set of files touched by a proposed commit.
type Change struct {
	Root  string
	Files []*AffectedFile
}

// New creates a change rooted at root.
func New(root string, files ...*AffectedFile) *Change {
	return &Change{Root: root, Files: files}
}

// AffectedFiles returns the files accepted by filter, in change order.
// A nil filter accepts everything. Deleted files are dropped unless
// includeDeletes is set.
func (c *Change) AffectedFiles(filter *Filter, includeDeletes bool) []*AffectedFile {
	var out []*AffectedFile
	for _, f := range c.Files {
		if f.Action == Deleted && !includeDeletes {
			continue
		}
		if filter != nil && !filter.Match(f.LocalPath) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// LocalPaths returns the local paths of all files in the change.
func (c *Change) LocalPaths() []string {
	paths := make([]string, len(c.Files))
	for i, f := range c.Files {
		paths[i] = f.LocalPath
	}
	return paths
}

// SplitLines splits data on LF, dropping the empty element after a final
// newline and a trailing CR on each line.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
