package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// checkPathHint tells the user once when presubmit was installed with
// `go install` into a bin directory missing from PATH. The git hooks
// written by `presubmit init --hook` need the binary on PATH.
func checkPathHint() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return
	}
	marker := hintMarkerPath()
	if marker == "" {
		return
	}
	showPathHint(os.Stderr, filepath.Dir(exe), os.Getenv("PATH"), os.Getenv("SHELL"), marker)
}

// showPathHint writes the hint for binDir to w unless it is not needed or
// the marker file says it was already shown. It reports whether it wrote.
func showPathHint(w io.Writer, binDir, path, shell, marker string) bool {
	if !isGoBinDir(binDir) || dirInPath(binDir, path) {
		return false
	}
	if _, err := os.Stat(marker); err == nil {
		return false
	}

	rc := shellConfigFile(shell)
	fmt.Fprintf(w, "\nTip: %s is not in your PATH, so git hooks cannot find presubmit:\n\n", binDir)
	fmt.Fprintf(w, "  echo 'export PATH=\"%s:$PATH\"' >> %s\n", binDir, rc)
	fmt.Fprintf(w, "  source %s\n\n", rc)

	_ = os.MkdirAll(filepath.Dir(marker), 0o755)
	_ = os.WriteFile(marker, nil, 0o644)
	return true
}

// isGoBinDir reports whether dir is a GOPATH bin directory.
func isGoBinDir(dir string) bool {
	return strings.HasSuffix(filepath.ToSlash(dir), "/go/bin")
}

func dirInPath(dir, path string) bool {
	for _, p := range filepath.SplitList(path) {
		if filepath.Clean(p) == filepath.Clean(dir) && p != "" {
			return true
		}
	}
	return false
}

// shellConfigFile picks the rc file for shell, defaulting to zsh on macOS
// and bash elsewhere.
func shellConfigFile(shell string) string {
	switch {
	case strings.Contains(shell, "zsh"):
		return "~/.zshrc"
	case strings.Contains(shell, "bash"):
		return "~/.bashrc"
	case runtime.GOOS == "darwin":
		return "~/.zshrc"
	default:
		return "~/.bashrc"
	}
}

func hintMarkerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".presubmit", ".path-hint-shown")
}
