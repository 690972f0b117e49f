package change

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const devNull = "/dev/null"

// FromPatch builds a change from a unified diff. Paths in the diff are
// resolved against root, where the new versions of the files must live.
func FromPatch(root string, r io.Reader) (*Change, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading patch: %w", err)
	}
	files, err := parseDiff(root, data)
	if err != nil {
		return nil, err
	}
	return New(root, files...), nil
}

// parseDiff turns unified diff text into affected files.
func parseDiff(root string, data []byte) ([]*AffectedFile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(bytes.NewReader(data)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var files []*AffectedFile
	for _, fd := range fileDiffs {
		origName := stripPrefix(fd.OrigName, "a/")
		newName := stripPrefix(fd.NewName, "b/")

		switch {
		case newName == devNull || newName == "":
			if origName == "" || origName == devNull {
				continue
			}
			files = append(files, NewAffectedFile(root, origName, Deleted, nil))
		case origName == devNull:
			files = append(files, NewAffectedFile(root, newName, Added, changedLines(fd)))
		default:
			files = append(files, NewAffectedFile(root, newName, Modified, changedLines(fd)))
		}
	}
	return files, nil
}

// changedLines walks the hunks of a file diff and collects the added lines
// with their line numbers in the new file.
func changedLines(fd *diff.FileDiff) []Line {
	var lines []Line
	for _, h := range fd.Hunks {
		n := int(h.NewStartLine)
		body := strings.TrimSuffix(string(h.Body), "\n")
		if body == "" {
			continue
		}
		for _, raw := range strings.Split(body, "\n") {
			if raw == "" {
				// Some generators drop the leading space on empty context lines.
				n++
				continue
			}
			switch raw[0] {
			case '+':
				lines = append(lines, Line{Number: n, Text: strings.TrimSuffix(raw[1:], "\r")})
				n++
			case ' ':
				n++
			case '-', '\\':
			}
		}
	}
	return lines
}

func stripPrefix(name, prefix string) string {
	name = strings.TrimSpace(name)
	if name == devNull {
		return name
	}
	return strings.TrimPrefix(name, prefix)
}
