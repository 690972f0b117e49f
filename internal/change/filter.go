package change

import (
	"fmt"
	"regexp"
)

// DefaultFilesToCheck are the source files canned checks look at when a
// check does not name its own allowlist.
var DefaultFilesToCheck = []string{
	`.+\.(c|cc|cpp|cxx|h|hh|hpp|inl|m|mm)$`,
	`.+\.(java|js|ts|py|sh|rb|pl|pm|go)$`,
	`.+\.(css|html)$`,
	`.+\.(gn|gni|gyp|gypi|grd|grdp|json|proto|fidl)$`,
	`.+\.(md|txt|cmake|mk)$`,
	`(^|.*?[\\/])(CMakeLists\.txt|Makefile|makefile|GNUmakefile)$`,
}

// DefaultFilesToSkip are never checked unless a check overrides the skiplist.
var DefaultFilesToSkip = []string{
	`testing_support[\\/]google_appengine[\\/].*`,
	`.*\bexperimental[\\/].*`,
	`.*\bthird_party[\\/].*`,
	`(|.*[\\/])\.git[\\/].*`,
	`.+\.diff$`,
	`.+\.patch$`,
}

// Filter selects files by regular expression. A path is accepted when it
// matches at least one check pattern and no skip pattern. Patterns are
// anchored at the start of the path.
type Filter struct {
	check []*regexp.Regexp
	skip  []*regexp.Regexp
}

// NewFilter compiles a filter. A nil filesToCheck falls back to
// DefaultFilesToCheck and a nil filesToSkip to DefaultFilesToSkip; pass an
// empty non-nil slice to disable either list.
func NewFilter(filesToCheck, filesToSkip []string) (*Filter, error) {
	if filesToCheck == nil {
		filesToCheck = DefaultFilesToCheck
	}
	if filesToSkip == nil {
		filesToSkip = DefaultFilesToSkip
	}
	check, err := compileAnchored(filesToCheck)
	if err != nil {
		return nil, fmt.Errorf("files_to_check: %w", err)
	}
	skip, err := compileAnchored(filesToSkip)
	if err != nil {
		return nil, fmt.Errorf("files_to_skip: %w", err)
	}
	return &Filter{check: check, skip: skip}, nil
}

// MustFilter is NewFilter for patterns known at compile time.
func MustFilter(filesToCheck, filesToSkip []string) *Filter {
	f, err := NewFilter(filesToCheck, filesToSkip)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether localPath passes the filter.
func (f *Filter) Match(localPath string) bool {
	if !matchAny(f.check, localPath) {
		return false
	}
	return !matchAny(f.skip, localPath)
}

// Without returns a copy of f that also skips the given patterns.
func (f *Filter) Without(patterns ...string) (*Filter, error) {
	extra, err := compileAnchored(patterns)
	if err != nil {
		return nil, err
	}
	skip := append(append([]*regexp.Regexp(nil), f.skip...), extra...)
	return &Filter{check: f.check, skip: skip}, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func compileAnchored(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
