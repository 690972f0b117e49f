package output

import (
	"encoding/json"
	"io"

	"github.com/garagon/presubmit/internal/types"
)

// ToolVersion is the presubmit version reported in SARIF output.
var ToolVersion = "dev"

// SARIFFormatter outputs results in SARIF 2.1.0 format for code scanning
// dashboards. Each check becomes a rule.
type SARIFFormatter struct {
	// Descriptions maps check names to a one-line description.
	Descriptions map[string]string
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool        `json:"tool"`
	AutomationDetails *sarifAutomation `json:"automationDetails,omitempty"`
	Results           []sarifResult    `json:"results"`
	Properties        map[string]any   `json:"properties,omitempty"`
}

type sarifAutomation struct {
	ID   string `json:"id,omitempty"`
	GUID string `json:"guid,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID     string          `json:"ruleId"`
	RuleIndex  int             `json:"ruleIndex"`
	Level      string          `json:"level"`
	Message    sarifMessage    `json:"message"`
	Locations  []sarifLocation `json:"locations,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func (f *SARIFFormatter) Format(w io.Writer, report *types.Report) error {
	// Collect checks that produced results, in order
	ruleIndex := map[string]int{}
	var rules []sarifRule
	for _, r := range report.Results {
		if _, ok := ruleIndex[r.Check]; ok {
			continue
		}
		desc := f.Descriptions[r.Check]
		if desc == "" {
			desc = r.Check
		}
		ruleIndex[r.Check] = len(rules)
		rules = append(rules, sarifRule{
			ID:               r.Check,
			Name:             r.Check,
			ShortDescription: sarifMessage{Text: desc},
			DefaultConfig:    sarifDefaultConfig{Level: kindToLevel(r.Kind)},
		})
	}

	results := make([]sarifResult, 0, len(report.Results))
	for _, r := range report.Results {
		sr := sarifResult{
			RuleID:    r.Check,
			RuleIndex: ruleIndex[r.Check],
			Level:     kindToLevel(r.Kind),
			Message:   sarifMessage{Text: fullMessage(r)},
		}
		for _, loc := range r.Locations {
			pl := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: loc.Path}}
			if loc.Line > 0 {
				pl.Region = &sarifRegion{StartLine: loc.Line}
			}
			sr.Locations = append(sr.Locations, sarifLocation{PhysicalLocation: pl})
		}
		if r.LongText != "" {
			sr.Properties = map[string]any{"output": r.LongText}
		}
		results = append(results, sr)
	}

	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:           "presubmit",
				Version:        ToolVersion,
				InformationURI: "https://github.com/garagon/presubmit",
				Rules:          rules,
			},
		},
		Results: results,
		Properties: map[string]any{
			"duration_ms":   report.Duration.Milliseconds(),
			"files_checked": report.FilesChecked,
		},
	}
	if report.RunID != "" {
		run.AutomationDetails = &sarifAutomation{
			ID:   "presubmit/" + report.Event + "/",
			GUID: report.RunID,
		}
	}

	log := sarifLog{
		Schema:  "https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

func kindToLevel(k types.Kind) string {
	switch k {
	case types.KindError:
		return "error"
	case types.KindWarning:
		return "warning"
	default:
		return "note"
	}
}
