// Package config loads reflink settings. Sources are layered from lowest to
// highest precedence: built-in defaults, a YAML file, REFLINK_* environment
// variables, and explicitly set command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lukemcguire/reflink/resolver"
)

// DefaultFile is the project config file looked up in the working directory.
const DefaultFile = ".reflink.yaml"

// EnvPrefix prefixes every environment override, e.g. REFLINK_REPO.
const EnvPrefix = "REFLINK_"

// Configuration holds every reflink setting.
type Configuration struct {
	Repo string `koanf:"repo"`
	Host string `koanf:"host"`

	// Retry schedule. The profile supplies the values; max_attempts,
	// base_delay, retry_step and max_delay override it when set.
	RetryProfile string        `koanf:"retry_profile"`
	MaxAttempts  int           `koanf:"max_attempts"`
	BaseDelay    time.Duration `koanf:"base_delay"`
	RetryStep    time.Duration `koanf:"retry_step"`
	MaxDelay     time.Duration `koanf:"max_delay"`

	Timeout        time.Duration `koanf:"timeout"` // Whole run; 0 disables
	RequestTimeout time.Duration `koanf:"request_timeout"`
	UserAgent      string        `koanf:"user_agent"`
	RateLimit      float64       `koanf:"rate_limit"` // Requests per second; 0 disables
	Concurrency    int           `koanf:"concurrency"`
	RespectRobots  bool          `koanf:"respect_robots"`

	ProtectMarkdown bool   `koanf:"protect_markdown"`
	IssueBoundary   string `koanf:"issue_boundary"`
	CommitHeuristic bool   `koanf:"commit_heuristic"`
	Families        string `koanf:"families"` // Comma-separated

	DryRun       bool   `koanf:"dry_run"`
	Output       string `koanf:"output"` // Empty rewrites the input; "-" is stdout
	Report       string `koanf:"report"`
	ReportFormat string `koanf:"report_format"`
	MetricsFile  string `koanf:"metrics_file"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	TUI       bool   `koanf:"tui"`

	// Policy is the effective retry schedule.
	Policy resolver.RetryPolicy `koanf:"-"`
	// Source is the config file that was loaded, if any.
	Source string `koanf:"-"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigPath is an explicit config file; it must exist.
	ConfigPath string
	// Dir is searched for DefaultFile when ConfigPath is empty. Default ".".
	Dir string
	// Overrides are applied last, keyed like the YAML file.
	Overrides map[string]any
}

// Load reads and validates the configuration.
func Load(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	source, err := loadFile(k, opts)
	if err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("applying override %s: %w", key, err)
		}
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Source = source

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	policy, err := effectivePolicy(k, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy

	return &cfg, nil
}

func loadFile(k *koanf.Koanf, opts LoadOptions) (string, error) {
	path := opts.ConfigPath
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, DefaultFile)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return "", &ValidationError{Source: path, Message: err.Error(), Err: err}
	}
	return path, nil
}

// effectivePolicy starts from the named profile and applies explicit
// schedule keys from any source other than the defaults.
func effectivePolicy(k *koanf.Koanf, cfg *Configuration) (resolver.RetryPolicy, error) {
	policy, err := resolver.PolicyForProfile(cfg.RetryProfile)
	if err != nil {
		return resolver.RetryPolicy{}, &ValidationError{Field: "retry_profile", Message: err.Error(), Err: err}
	}
	if k.Exists("max_attempts") {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if k.Exists("base_delay") {
		policy.BaseDelay = cfg.BaseDelay
	}
	if k.Exists("retry_step") {
		policy.Step = cfg.RetryStep
	}
	if k.Exists("max_delay") {
		policy.MaxDelay = cfg.MaxDelay
	}
	if err := policy.Validate(); err != nil {
		return resolver.RetryPolicy{}, &ValidationError{Field: "max_attempts", Message: err.Error(), Err: err}
	}
	return policy, nil
}

// FamilyNames splits the families setting.
func (c *Configuration) FamilyNames() []string {
	var names []string
	for _, name := range strings.Split(c.Families, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
