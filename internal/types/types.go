// Package types defines shared data structures (Kind, Result, Report)
// used across runner, checks, and output packages to prevent import cycles.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a presubmit result. The order matters: a higher Kind
// is more severe.
type Kind int

const (
	KindNotify  Kind = iota // informational message, never blocks
	KindWarning             // prompt warning, blocks only with --fail-on warning
	KindError               // blocks the change
)

func (k Kind) String() string {
	switch k {
	case KindNotify:
		return "notify"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "errors":
		return KindError, nil
	case "warning", "warn", "warnings":
		return KindWarning, nil
	case "notify", "message", "info":
		return KindNotify, nil
	default:
		return KindNotify, fmt.Errorf("unknown result kind: %q", s)
	}
}

// MarshalText encodes the kind by name so JSON reports stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Location points a result at a line in the change.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line,omitempty"`
}

// Result is the outcome of one check. A check may return several.
type Result struct {
	Check     string        `json:"check"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Items     []string      `json:"items,omitempty"`
	LongText  string        `json:"long_text,omitempty"`
	Locations []Location    `json:"locations,omitempty"`
	Duration  time.Duration `json:"-"`
}

// NewNotify builds an informational result.
func NewNotify(message string) Result {
	return Result{Kind: KindNotify, Message: message}
}

// NewWarning builds a prompt warning.
func NewWarning(message string) Result {
	return Result{Kind: KindWarning, Message: message}
}

// NewError builds a blocking result.
func NewError(message string) Result {
	return Result{Kind: KindError, Message: message}
}

// NewResult builds a result of the given kind. Checks whose kind depends on
// the event (upload vs commit) use it as their result factory.
func NewResult(kind Kind, message string) Result {
	return Result{Kind: kind, Message: message}
}

// WithItems returns a copy of r listing items under the message.
func (r Result) WithItems(items ...string) Result {
	r.Items = append([]string(nil), items...)
	return r
}

// WithLongText returns a copy of r carrying long text (usually tool output).
func (r Result) WithLongText(text string) Result {
	r.LongText = text
	return r
}

// WithLocations returns a copy of r pointing at the given locations.
func (r Result) WithLocations(locs ...Location) Result {
	r.Locations = append([]Location(nil), locs...)
	return r
}

// Report holds the complete results of a presubmit run.
type Report struct {
	RunID        string        `json:"run_id"`
	Event        string        `json:"event"`
	Results      []Result      `json:"results"`
	FilesChecked int           `json:"files_checked"`
	ChecksRun    int           `json:"checks_run"`
	Duration     time.Duration `json:"-"`
	Root         string        `json:"-"`
}

// Count returns how many results have the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == kind {
			n++
		}
	}
	return n
}

// Passed reports whether no result reaches threshold.
func (r *Report) Passed(threshold Kind) bool {
	for _, res := range r.Results {
		if res.Kind >= threshold {
			return false
		}
	}
	return true
}

// MarshalJSON implements custom JSON marshaling so Duration serializes as milliseconds.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(struct {
		Alias
		Passed     bool  `json:"passed"`
		DurationMS int64 `json:"duration_ms"`
	}{
		Alias:      Alias(r),
		Passed:     r.Passed(KindError),
		DurationMS: r.Duration.Milliseconds(),
	})
}
