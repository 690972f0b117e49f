package checks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/garagon/presubmit/internal/runner"
)

// maxShownLongLines caps how many offending lines are listed as items.
const maxShownLongLines = 5

// Lines starting with these prefixes (after indentation) are never too long.
var lineLengthExceptions = []struct {
	exts     []string
	prefixes []string
}{
	{[]string{"c", "cc"}, []string{"#define", "#endif", "#if", "#include", "#pragma"}},
	{[]string{"h", "m", "mm"}, []string{"#define", "#endif", "#if", "#import", "#include", "#pragma"}},
	{[]string{"html"}, []string{"<g ", "<link ", "<path "}},
	{[]string{"java"}, []string{"import ", "package "}},
	{[]string{"js"}, []string{"GEN('#include", "import "}},
	{[]string{"ts"}, []string{"import "}},
	{[]string{"py"}, []string{"import", "from"}},
}

// Per-extension limits. Zero disables the check for that extension.
var lineLengthOverrides = map[string]int{
	"java":     100,
	"mk":       200,
	"go":       0,
	"Makefile": 0,
	"makefile": 0,
}

// LongLines flags changed lines longer than the configured limit.
type LongLines struct {
	Settings Settings
}

func (*LongLines) Name() string { return "long-lines" }
func (c *LongLines) Description() string {
	return fmt.Sprintf("Changed lines are at most %d characters long", c.Settings.maxLineLength())
}

func (c *LongLines) Run(_ context.Context, in *runner.Input) ([]runner.Result, error) {
	filter, err := c.Settings.sourceFilter()
	if err != nil {
		return nil, err
	}
	maxlen := c.Settings.maxLineLength()
	found, err := findViolations(in, filter, func(ext, line string) bool {
		return lineLengthAllowed(maxlen, ext, line)
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}

	items := make([]string, 0, maxShownLongLines)
	for _, v := range found {
		if len(items) == maxShownLongLines {
			break
		}
		items = append(items, fmt.Sprintf("%s, line %d, %d chars", v.path, v.line.Number, utf8.RuneCountInString(v.line.Text)))
	}
	msg := fmt.Sprintf("Found %d lines longer than %d characters (first %d shown).", len(found), maxlen, maxShownLongLines)
	return []runner.Result{
		runner.NewWarning(msg).WithItems(items...).WithLocations(locations(found)...),
	}, nil
}

func lineLengthAllowed(maxlen int, ext, line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, ex := range lineLengthExceptions {
		if !slices.Contains(ex.exts, ext) {
			continue
		}
		for _, p := range ex.prefixes {
			if strings.HasPrefix(trimmed, p) {
				return true
			}
		}
	}

	fileMax := maxlen
	if override, ok := lineLengthOverrides[ext]; ok {
		if override == 0 {
			return true
		}
		fileMax = override
	}

	// Length is counted in characters, not bytes.
	n := utf8.RuneCountInString(line)
	if n <= fileMax {
		return true
	}
	for _, url := range []string{"file://", "http://", "https://"} {
		if strings.Contains(line, url) {
			return true
		}
	}
	if strings.Contains(line, "pylint: disable=line-too-long") && ext == "py" {
		return true
	}
	// Hard limit at 50% over.
	if n > fileMax*3/2 {
		return false
	}
	if ext == "css" && strings.Contains(line, "url(") {
		return true
	}
	if strings.Contains(line, "<include") && slices.Contains([]string{"css", "html", "js"}, ext) {
		return true
	}
	// A single symbol taking two thirds of the limit cannot be wrapped.
	return hasLongSymbol(line, fileMax*2/3)
}

// hasLongSymbol reports whether line holds a letter followed by at least n
// identifier characters.
func hasLongSymbol(line string, n int) bool {
	start := -1 // first letter of the current identifier run
	for i := 0; i <= len(line); i++ {
		if i < len(line) && isIdentByte(line[i]) {
			if start < 0 && isLetter(line[i]) {
				start = i
			}
			continue
		}
		if start >= 0 && i-start-1 >= n {
			return true
		}
		start = -1
	}
	return false
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isIdentByte(b byte) bool {
	return isLetter(b) || b >= '0' && b <= '9' || b == '_'
}
