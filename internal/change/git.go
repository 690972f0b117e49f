package change

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotRepository is returned when a git-backed loader runs outside a
// git work tree.
var ErrNotRepository = errors.New("not a git repository")

// GitOptions controls how FromGit computes the change.
type GitOptions struct {
	// Base is the revision to diff against. Empty means HEAD, which yields
	// staged and unstaged edits. Any other revision is diffed from its merge
	// base with HEAD, so local commits are included.
	Base string
	// SkipUntracked leaves untracked files out of the change.
	SkipUntracked bool
}

// FromGit builds the change for the git work tree containing dir. The
// returned change is rooted at the work tree's top level.
func FromGit(ctx context.Context, dir string, opts GitOptions) (*Change, error) {
	root, err := Toplevel(ctx, dir)
	if err != nil {
		return nil, err
	}

	base, err := resolveBase(ctx, root, opts.Base)
	if err != nil {
		return nil, err
	}

	// Fixed prefixes override diff.noprefix and diff.mnemonicPrefix.
	args := []string{"diff", "--no-color", "--no-ext-diff", "--no-renames", "-U0", "--src-prefix=a/", "--dst-prefix=b/"}
	out, err := runGit(ctx, root, append(args, base, "--")...)
	if err != nil {
		if opts.Base != "" {
			return nil, fmt.Errorf("git diff %s: %w", base, err)
		}
		// Repos without any commits yet have no HEAD.
		out, err = runGit(ctx, root, append(args, "--cached", "--")...)
		if err != nil {
			return nil, fmt.Errorf("git diff --cached: %w", err)
		}
	}

	files, err := parseDiff(root, []byte(out))
	if err != nil {
		return nil, err
	}

	if !opts.SkipUntracked {
		seen := make(map[string]bool, len(files))
		for _, f := range files {
			seen[f.LocalPath] = true
		}
		out, err = runGit(ctx, root, "ls-files", "--others", "--exclude-standard")
		if err == nil {
			for _, p := range splitOutput(out) {
				if !seen[p] {
					seen[p] = true
					files = append(files, NewWholeFile(root, p, Added))
				}
			}
		}
	}

	return New(root, files...), nil
}

// FromAll builds a change containing every tracked file, each counted as
// fully changed.
func FromAll(ctx context.Context, dir string) (*Change, error) {
	root, err := Toplevel(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := runGit(ctx, root, "ls-files")
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	var files []*AffectedFile
	for _, p := range splitOutput(out) {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err != nil {
			continue
		}
		files = append(files, NewWholeFile(root, p, Modified))
	}
	return New(root, files...), nil
}

// FromFiles builds a change out of explicit paths relative to root. Every
// line of every file counts as changed. Missing files are an error.
func FromFiles(root string, paths []string) (*Change, error) {
	var files []*AffectedFile
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		local := p
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil, fmt.Errorf("resolving %s: %w", p, err)
			}
			local = rel
		}
		abs := filepath.Join(root, local)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		files = append(files, NewWholeFile(root, local, Modified))
	}
	return New(root, files...), nil
}

// Toplevel returns the root of the git work tree containing dir.
func Toplevel(ctx context.Context, dir string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git is required: %w", err)
	}
	out, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepository, dir)
	}
	return filepath.FromSlash(strings.TrimSpace(out)), nil
}

func resolveBase(ctx context.Context, root, base string) (string, error) {
	if base == "" || base == "HEAD" {
		return "HEAD", nil
	}
	out, err := runGit(ctx, root, "merge-base", base, "HEAD")
	if err != nil {
		return "", fmt.Errorf("finding merge base with %s: %w", base, err)
	}
	return strings.TrimSpace(out), nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

func splitOutput(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
