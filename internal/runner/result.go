package runner

// This package re-exports types from internal/types for convenience.
// The canonical types live in internal/types to avoid import cycles.

import "github.com/garagon/presubmit/internal/types"

type (
	Kind     = types.Kind
	Location = types.Location
	Result   = types.Result
	Report   = types.Report
)

const (
	KindNotify  = types.KindNotify
	KindWarning = types.KindWarning
	KindError   = types.KindError
)

var (
	NewNotify  = types.NewNotify
	NewWarning = types.NewWarning
	NewError   = types.NewError
	NewResult  = types.NewResult
)
