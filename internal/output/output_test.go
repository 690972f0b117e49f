package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/garagon/presubmit/internal/output"
	"github.com/garagon/presubmit/internal/types"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.Report {
	return &types.Report{
		RunID:        "6f1c2a4e-8d0b-4b57-9a55-0c3d2e1f4a7b",
		Event:        "upload",
		Root:         "/src/libwebm",
		FilesChecked: 3,
		ChecksRun:    7,
		Duration:     1500 * time.Millisecond,
		Results: []types.Result{
			{
				Check:     "tabs",
				Kind:      types.KindWarning,
				Message:   "Found a tab character in:",
				LongText:  "mkvparser.cc:12",
				Locations: []types.Location{{Path: "mkvparser.cc", Line: 12}},
			},
			{
				Check:   "shellcheck",
				Kind:    types.KindError,
				Message: "Check /src/libwebm/build.sh file.\nshellcheck -x -oall -sbash /src/libwebm/build.sh (0.12s) failed\n",
			},
			{
				Check:     "long-lines",
				Kind:      types.KindWarning,
				Message:   "Found 1 lines longer than 80 characters (first 5 shown).",
				Items:     []string{"mkvmuxer.cc, line 40, 95 chars"},
				Locations: []types.Location{{Path: "mkvmuxer.cc", Line: 40}},
			},
			{
				Check:   "cpplint",
				Kind:    types.KindNotify,
				Message: "Skipped: cpplint is not installed or not on PATH.",
			},
		},
	}
}

func TestTerminalFormatterNoResults(t *testing.T) {
	f := &output.TerminalFormatter{NoColor: true}
	var buf bytes.Buffer
	report := &types.Report{Event: "upload", FilesChecked: 5, ChecksRun: 7, Root: "/src/libwebm"}

	require.NoError(t, f.Format(&buf, report))
	out := buf.String()
	require.Contains(t, out, "PRESUBMIT RESULTS")
	require.Contains(t, out, "No presubmit problems found")
	require.Contains(t, out, "5 files checked")
	require.Contains(t, out, "0 errors")
	require.Contains(t, out, "Root: /src/libwebm")
	require.Contains(t, out, "Presubmit checks passed.")
}

func TestTerminalFormatterWithResults(t *testing.T) {
	f := &output.TerminalFormatter{NoColor: true}
	var buf bytes.Buffer

	require.NoError(t, f.Format(&buf, sampleReport()))
	out := buf.String()
	require.Contains(t, out, "ERRORS (1)")
	require.Contains(t, out, "WARNINGS (2)")
	require.Contains(t, out, "MESSAGES (1)")
	require.Contains(t, out, "mkvmuxer.cc, line 40, 95 chars")
	require.Contains(t, out, "mkvparser.cc:12")
	require.Contains(t, out, "TOP AFFECTED FILES")
	require.Contains(t, out, "There were presubmit errors.")
	require.NotContains(t, out, "\033[")

	// Errors come before warnings, warnings before messages.
	require.Less(t, strings.Index(out, "ERRORS"), strings.Index(out, "WARNINGS"))
	require.Less(t, strings.Index(out, "WARNINGS"), strings.Index(out, "MESSAGES"))
}

func TestTerminalFormatterColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	f := &output.TerminalFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleReport()))
	require.Contains(t, buf.String(), "\033[")
}

func TestTerminalFormatterTruncatesLongText(t *testing.T) {
	var lines []string
	for i := range 30 {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	report := &types.Report{Results: []types.Result{{
		Check:    "cpplint",
		Kind:     types.KindWarning,
		Message:  "Changelist failed cpplint check.",
		LongText: strings.Join(lines, "\n"),
	}}}

	var buf bytes.Buffer
	require.NoError(t, (&output.TerminalFormatter{NoColor: true}).Format(&buf, report))
	require.Contains(t, buf.String(), "10 more lines")

	buf.Reset()
	require.NoError(t, (&output.TerminalFormatter{NoColor: true, Verbose: true}).Format(&buf, report))
	require.NotContains(t, buf.String(), "more lines")
	require.Contains(t, buf.String(), strings.Repeat("x", 30))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&output.JSONFormatter{}).Format(&buf, sampleReport()))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Equal(t, "upload", parsed["event"])
	require.Equal(t, false, parsed["passed"])
	require.Equal(t, float64(1500), parsed["duration_ms"])
	require.Len(t, parsed["results"], 4)
}

func TestSARIFFormatter(t *testing.T) {
	f := &output.SARIFFormatter{Descriptions: map[string]string{"tabs": "No tabs"}}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleReport()))

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID               string `json:"id"`
						ShortDescription struct {
							Text string `json:"text"`
						} `json:"shortDescription"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			AutomationDetails struct {
				GUID string `json:"guid"`
			} `json:"automationDetails"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				RuleIndex int    `json:"ruleIndex"`
				Level     string `json:"level"`
				Message   struct {
					Text string `json:"text"`
				} `json:"message"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	require.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)

	run := log.Runs[0]
	require.Equal(t, "presubmit", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 4)
	require.Equal(t, "No tabs", run.Tool.Driver.Rules[0].ShortDescription.Text)
	require.Equal(t, "shellcheck", run.Tool.Driver.Rules[1].ShortDescription.Text)
	require.Equal(t, "6f1c2a4e-8d0b-4b57-9a55-0c3d2e1f4a7b", run.AutomationDetails.GUID)

	require.Len(t, run.Results, 4)
	require.Equal(t, "warning", run.Results[0].Level)
	require.Equal(t, "error", run.Results[1].Level)
	require.Equal(t, "note", run.Results[3].Level)
	require.Equal(t, 2, run.Results[2].RuleIndex)
	require.Contains(t, run.Results[2].Message.Text, "mkvmuxer.cc, line 40, 95 chars")
	require.Equal(t, "mkvparser.cc", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.Equal(t, 12, run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
	require.Empty(t, run.Results[1].Locations)
}

func TestMarkdownFormatterClean(t *testing.T) {
	var buf bytes.Buffer
	report := &types.Report{FilesChecked: 2, ChecksRun: 7}
	require.NoError(t, (&output.MarkdownFormatter{}).Format(&buf, report))
	require.Contains(t, buf.String(), ":white_check_mark:")
	require.Contains(t, buf.String(), "2 files checked")
}

func TestMarkdownFormatterWithResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&output.MarkdownFormatter{}).Format(&buf, sampleReport()))
	out := buf.String()
	require.Contains(t, out, ":x: Presubmit: There were presubmit errors.")
	require.Contains(t, out, "<details open>")
	require.Contains(t, out, "| `tabs` |")
	require.Contains(t, out, "`mkvparser.cc:12`")
	require.Contains(t, out, "<code>mkvmuxer.cc, line 40, 95 chars</code>")
	require.Contains(t, out, "```\nmkvparser.cc:12\n```")
	require.Contains(t, out, "**1 errors**")
}
