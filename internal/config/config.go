// Package config loads and validates .presubmit.yml configuration files
// for check selection, file patterns, and tool overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{".presubmit.yml", ".presubmit.yaml"}

const maxConfigSize = 1 << 20

// CheckOverride allows a check to be switched off.
type CheckOverride struct {
	Disabled bool `yaml:"disabled,omitempty"`
}

// ToolOverride replaces how an external tool is invoked.
type ToolOverride struct {
	Path string   `yaml:"path,omitempty"`
	Args []string `yaml:"args,omitempty"`
}

// Config represents the .presubmit.yml configuration file.
type Config struct {
	MaxLineLength int                      `yaml:"max_line_length,omitempty" validate:"omitempty,gte=1,lte=1000"`
	SourceFiles   []string                 `yaml:"source_files,omitempty" validate:"omitempty,dive,required,re2"`
	ShellFiles    []string                 `yaml:"shell_files,omitempty" validate:"omitempty,dive,required,re2"`
	FilesToSkip   []string                 `yaml:"files_to_skip" validate:"omitempty,dive,required,re2"`
	LintFilters   []string                 `yaml:"lint_filters" validate:"omitempty,dive,required,startswith=-|startswith=+"`
	Format        string                   `yaml:"format,omitempty" validate:"omitempty,oneof=terminal json sarif markdown"`
	FailOn        string                   `yaml:"fail_on,omitempty" validate:"omitempty,oneof=error warning notify"`
	MissingTools  string                   `yaml:"missing_tools,omitempty" validate:"omitempty,oneof=error warning skip"`
	Timeout       string                   `yaml:"timeout,omitempty" validate:"omitempty,goduration"`
	Checks        map[string]CheckOverride `yaml:"checks,omitempty"`
	Tools         map[string]ToolOverride  `yaml:"tools,omitempty" validate:"omitempty,dive,keys,oneof=clang-format yapf cpplint shellcheck,endkeys"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("re2", validateRegexp)
	_ = validate.RegisterValidation("goduration", validateDuration)
}

func validateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Load reads the .presubmit.yml or .presubmit.yaml config file from the
// given path. If path is a file, its parent directory is used. If no config
// file is found, it returns a zero Config (not an error). A config that
// fails validation is an error.
func Load(dir string) (Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > maxConfigSize {
			return Config{}, fmt.Errorf("config file too large: %s (%d bytes, max 1 MB)", path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := cfg.Validate(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}
	return Config{}, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := yamlName(fe.StructNamespace())
	tag := fe.Tag()
	if strings.HasPrefix(tag, "startswith") {
		tag = "startswith"
	}
	switch tag {
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
	case "re2":
		return fmt.Sprintf("%s: %q is not a valid regular expression", field, fe.Value())
	case "goduration":
		return fmt.Sprintf("%s: %q is not a positive duration", field, fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s: %v is out of range", field, fe.Value())
	case "startswith":
		return fmt.Sprintf("%s: %q must start with + or -", field, fe.Value())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}

// yamlName turns Config.SourceFiles[0] into source_files[0].
func yamlName(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	var b strings.Builder
	for i, r := range ns {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && ns[i-1] != '.' && ns[i-1] != '[' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DisabledChecks returns the names of checks switched off, sorted.
func (c Config) DisabledChecks() []string {
	var out []string
	for name, o := range c.Checks {
		if o.Disabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// TimeoutDuration returns the per-tool timeout, or zero when unset.
func (c Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}
