package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/garagon/presubmit/internal/types"
)

// MarkdownFormatter outputs results as GitHub-flavored markdown,
// designed for CI job summaries and review comments.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, report *types.Report) error {
	if len(report.Results) == 0 {
		f.printClean(w, report)
		return nil
	}

	f.printSummary(w, report)
	f.printResults(w, report.Results)
	f.printFooter(w)
	return nil
}

func (f *MarkdownFormatter) printClean(w io.Writer, report *types.Report) {
	fmt.Fprintf(w, "### :white_check_mark: Presubmit: no problems found\n\n")
	fmt.Fprintf(w, "> %d files checked · %d checks · %.2fs\n",
		report.FilesChecked, report.ChecksRun, report.Duration.Seconds())
}

func (f *MarkdownFormatter) printSummary(w io.Writer, report *types.Report) {
	icon := ":warning:"
	if report.Count(types.KindError) > 0 {
		icon = ":x:"
	} else if report.Count(types.KindWarning) == 0 {
		icon = ":white_check_mark:"
	}
	fmt.Fprintf(w, "### %s Presubmit: %s\n\n", icon, verdict(report))

	fmt.Fprintf(w, "> **Event:** `%s` · %d files · %d checks · %.2fs\n\n",
		report.Event, report.FilesChecked, report.ChecksRun, report.Duration.Seconds())

	var badges []string
	for _, k := range kindOrder {
		if c := report.Count(k); c > 0 {
			badges = append(badges, fmt.Sprintf("%s **%d %s**", kindEmoji(k), c, strings.ToLower(sectionTitle(k))))
		}
	}
	fmt.Fprintf(w, "%s\n\n", strings.Join(badges, " · "))
}

func (f *MarkdownFormatter) printResults(w io.Writer, results []types.Result) {
	for _, k := range kindOrder {
		filtered := filterByKind(results, k)
		if len(filtered) == 0 {
			continue
		}

		open := ""
		if k == types.KindError {
			open = " open"
		}
		fmt.Fprintf(w, "<details%s>\n", open)
		fmt.Fprintf(w, "<summary>%s <strong>%s (%d)</strong></summary>\n\n", kindEmoji(k), sectionTitle(k), len(filtered))

		fmt.Fprintf(w, "| Check | Message | Files |\n")
		fmt.Fprintf(w, "|-------|---------|-------|\n")
		for _, r := range filtered {
			msg := escapeMarkdown(strings.TrimRight(r.Message, "\n"))
			msg = strings.ReplaceAll(msg, "\n", "<br>")
			for _, item := range r.Items {
				msg += "<br><code>" + escapeMarkdown(item) + "</code>"
			}
			fmt.Fprintf(w, "| `%s` | %s | %s |\n", r.Check, msg, locationList(r.Locations))
		}
		fmt.Fprintf(w, "\n")

		for _, r := range filtered {
			if r.LongText == "" {
				continue
			}
			fmt.Fprintf(w, "<sub>`%s` output</sub>\n\n```\n%s\n```\n\n", r.Check, strings.TrimRight(r.LongText, "\n"))
		}

		fmt.Fprintf(w, "</details>\n\n")
	}
}

func (f *MarkdownFormatter) printFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n")
	fmt.Fprintf(w, "*Checked by [presubmit](https://github.com/garagon/presubmit) %s*\n", ToolVersion)
}

// locationList renders up to five distinct locations as code spans.
func locationList(locs []types.Location) string {
	const limit = 5
	var parts []string
	seen := map[string]bool{}
	for _, loc := range locs {
		s := loc.Path
		if loc.Line > 0 {
			s = fmt.Sprintf("%s:%d", loc.Path, loc.Line)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		if len(parts) == limit {
			parts = append(parts, fmt.Sprintf("+%d more", len(locs)-limit))
			break
		}
		parts = append(parts, "`"+s+"`")
	}
	return strings.Join(parts, " ")
}

func kindEmoji(k types.Kind) string {
	switch k {
	case types.KindError:
		return ":red_circle:"
	case types.KindWarning:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
