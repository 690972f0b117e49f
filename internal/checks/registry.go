package checks

import "github.com/garagon/presubmit/internal/runner"

// Default returns the standard check set in run order: the common
// whitespace, length and formatting checks, then cpplint and shellcheck.
func Default(s Settings) []runner.Check {
	return []runner.Check{
		&CrEol{Settings: s},
		&Tabs{Settings: s},
		&TrailingWhitespace{Settings: s},
		&LongLines{Settings: s},
		&PatchFormatted{Settings: s, ClangFormat: true, Python: true, ResultFactory: runner.NewError},
		&CppLint{Settings: s},
		&ShellCheck{Settings: s},
	}
}

// Names returns the names of the default checks in run order.
func Names() []string {
	all := Default(DefaultSettings())
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name()
	}
	return names
}
