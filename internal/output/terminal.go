package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/garagon/presubmit/internal/types"
)

// ANSI color codes
const (
	reset     = "\033[0m"
	bold      = "\033[1m"
	dim       = "\033[2m"
	underline = "\033[4m"
	red       = "\033[31m"
	green     = "\033[32m"
	yellow    = "\033[33m"
	cyan      = "\033[36m"
)

const (
	barWidth       = 40
	lineWidth      = 72
	checkNameWidth = 20
	// maxLongTextLines bounds tool output shown per result unless verbose.
	maxLongTextLines = 20
)

// TerminalFormatter prints results grouped by kind, errors first.
type TerminalFormatter struct {
	NoColor bool
	Verbose bool
}

func (f *TerminalFormatter) color(code, text string) string {
	if f.NoColor {
		return text
	}
	return code + text + reset
}

func (f *TerminalFormatter) Format(w io.Writer, report *types.Report) error {
	if os.Getenv("NO_COLOR") != "" {
		f.NoColor = true
	}

	f.printHeader(w, report)

	if len(report.Results) == 0 {
		fmt.Fprintf(w, "\n  %s No presubmit problems found.\n", f.color(green, "✔"))
	} else {
		f.printDashboard(w, report)
		for _, k := range kindOrder {
			if results := filterByKind(report.Results, k); len(results) > 0 {
				f.printSection(w, k, results)
			}
		}
		f.printTopFiles(w, report.Results)
	}

	f.printFooter(w, report)
	return nil
}

func (f *TerminalFormatter) separator() string {
	return strings.Repeat("─", lineWidth)
}

func (f *TerminalFormatter) sectionHeader(title string) string {
	prefix := "── " + title + " "
	remaining := max(lineWidth-utf8.RuneCountInString(prefix), 0)
	return prefix + strings.Repeat("─", remaining)
}

func (f *TerminalFormatter) printHeader(w io.Writer, report *types.Report) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))
	fmt.Fprintf(w, "  %s\n", f.color(bold, "PRESUBMIT RESULTS"))

	parts := []string{}
	if report.Root != "" {
		parts = append(parts, fmt.Sprintf("Root: %s", report.Root))
	}
	if report.Event != "" {
		parts = append(parts, report.Event)
	}
	parts = append(parts, fmt.Sprintf("%d files", report.FilesChecked))
	parts = append(parts, fmt.Sprintf("%d checks", report.ChecksRun))
	if report.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", report.Duration.Seconds()))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  ·  "))
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) printDashboard(w io.Writer, report *types.Report) {
	most := 0
	for _, k := range kindOrder {
		most = max(most, report.Count(k))
	}

	fmt.Fprintln(w)
	for _, k := range kindOrder {
		c := report.Count(k)
		if c == 0 {
			continue
		}
		label := fmt.Sprintf("  %-10s", k.String())
		fmt.Fprintf(w, "%s %s %4d\n", f.color(bold, label), f.renderBar(c, most, barWidth, k), c)
	}
}

func (f *TerminalFormatter) printSection(w io.Writer, k types.Kind, results []types.Result) {
	header := f.sectionHeader(fmt.Sprintf("%s (%d)", sectionTitle(k), len(results)))
	fmt.Fprintf(w, "\n%s\n", f.color(bold, header))

	for _, r := range results {
		lines := strings.Split(strings.TrimRight(r.Message, "\n"), "\n")
		name := fmt.Sprintf("%-*s", checkNameWidth, r.Check)
		fmt.Fprintf(w, "\n    %s %s %s\n", f.kindIcon(k), f.color(bold, name), lines[0])

		bar := f.color(dim, "│")
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "      %s %s\n", bar, l)
		}
		for _, item := range r.Items {
			fmt.Fprintf(w, "      %s   %s\n", bar, f.color(cyan, item))
		}
		if r.LongText != "" {
			f.printLongText(w, r.LongText)
		}
		if f.Verbose && r.Duration > 0 {
			fmt.Fprintf(w, "      %s %s\n", bar, f.color(dim, fmt.Sprintf("%.2fs", r.Duration.Seconds())))
		}
	}
}

func (f *TerminalFormatter) printLongText(w io.Writer, text string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	hidden := 0
	if !f.Verbose && len(lines) > maxLongTextLines {
		hidden = len(lines) - maxLongTextLines
		lines = lines[:maxLongTextLines]
	}
	bar := f.color(dim, "│")
	for _, l := range lines {
		fmt.Fprintf(w, "      %s %s\n", bar, f.color(dim, l))
	}
	if hidden > 0 {
		fmt.Fprintf(w, "      %s %s\n", bar, f.color(dim, fmt.Sprintf("... %d more lines (use --verbose)", hidden)))
	}
}

func (f *TerminalFormatter) printTopFiles(w io.Writer, results []types.Result) {
	fileCounts := map[string]int{}
	for _, r := range results {
		for _, loc := range r.Locations {
			fileCounts[loc.Path]++
		}
	}

	type fileCount struct {
		path  string
		count int
	}
	sorted := make([]fileCount, 0, len(fileCounts))
	for path, count := range fileCounts {
		sorted = append(sorted, fileCount{path, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].path < sorted[j].path
	})

	limit := min(len(sorted), 5)
	if limit < 2 {
		return
	}

	fmt.Fprintf(w, "\n%s\n\n", f.color(bold, f.sectionHeader("TOP AFFECTED FILES")))
	for i := range limit {
		fmt.Fprintf(w, "  %4d  %s\n", sorted[i].count, f.color(underline, sorted[i].path))
	}
}

func (f *TerminalFormatter) printFooter(w io.Writer, report *types.Report) {
	sep := f.separator()
	fmt.Fprintf(w, "\n%s\n", f.color(dim, sep))

	parts := []string{
		fmt.Sprintf("%d files checked", report.FilesChecked),
		fmt.Sprintf("%d errors", report.Count(types.KindError)),
		fmt.Sprintf("%d warnings", report.Count(types.KindWarning)),
		fmt.Sprintf("%d messages", report.Count(types.KindNotify)),
	}
	if report.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%.2fs", report.Duration.Seconds()))
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(parts, " · "))

	v := verdict(report)
	switch {
	case report.Count(types.KindError) > 0:
		v = f.color(red+bold, v)
	case report.Count(types.KindWarning) > 0:
		v = f.color(yellow+bold, v)
	default:
		v = f.color(green, v)
	}
	fmt.Fprintf(w, "  %s\n", v)
	fmt.Fprintf(w, "%s\n", f.color(dim, sep))
}

func (f *TerminalFormatter) kindIcon(k types.Kind) string {
	switch k {
	case types.KindError:
		return f.color(red+bold, "✖")
	case types.KindWarning:
		return f.color(yellow, "▲")
	default:
		return f.color(cyan, "○")
	}
}

func kindColor(k types.Kind) string {
	switch k {
	case types.KindError:
		return red
	case types.KindWarning:
		return yellow
	default:
		return cyan
	}
}

func (f *TerminalFormatter) renderBar(count, most, width int, k types.Kind) string {
	if most == 0 {
		return strings.Repeat("░", width)
	}
	filled := count * width / most
	if filled == 0 && count > 0 {
		filled = 1
	}
	// Always keep at least 1 empty block so bar boundary is visible
	if filled >= width {
		filled = width - 1
	}
	return f.color(kindColor(k), strings.Repeat("█", filled)) +
		f.color(dim, strings.Repeat("░", width-filled))
}
