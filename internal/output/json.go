package output

import (
	"encoding/json"
	"io"

	"github.com/garagon/presubmit/internal/types"
)

// JSONFormatter outputs the report as a JSON object.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, report *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
