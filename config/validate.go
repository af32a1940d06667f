package config

import (
	"fmt"

	"github.com/lukemcguire/reflink/pattern"
)

// ValidationError reports a bad configuration value or file.
type ValidationError struct {
	Source  string // Config file path, if the error is about a file
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	switch {
	case e.Source != "":
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	case e.Field != "":
		return fmt.Sprintf("config field '%s': %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks value ranges and enumerations. Repository and host
// syntax are checked when the engine is built.
func Validate(cfg *Configuration) error {
	checks := []struct {
		ok      bool
		field   string
		message string
	}{
		{cfg.MaxAttempts >= 0, "max_attempts", "must not be negative"},
		{cfg.BaseDelay >= 0, "base_delay", "must not be negative"},
		{cfg.RetryStep >= 0, "retry_step", "must not be negative"},
		{cfg.MaxDelay >= 0, "max_delay", "must not be negative"},
		{cfg.Timeout >= 0, "timeout", "must not be negative"},
		{cfg.RequestTimeout > 0, "request_timeout", "must be positive"},
		{cfg.RateLimit >= 0, "rate_limit", "must not be negative"},
		{cfg.Concurrency >= 1, "concurrency", "must be at least 1"},
		{oneOf(cfg.IssueBoundary, string(pattern.BoundaryStrict), string(pattern.BoundaryLoose)), "issue_boundary", "must be strict or loose"},
		{oneOf(cfg.ReportFormat, "json", "csv"), "report_format", "must be json or csv"},
		{oneOf(cfg.LogLevel, "debug", "info", "warn", "error"), "log_level", "must be debug, info, warn or error"},
		{oneOf(cfg.LogFormat, "text", "json"), "log_format", "must be text or json"},
		{!(cfg.DryRun && cfg.Output != ""), "output", "cannot be combined with dry_run"},
	}
	for _, c := range checks {
		if !c.ok {
			return &ValidationError{Field: c.field, Message: c.message}
		}
	}

	if _, err := pattern.ParseFamilies(cfg.FamilyNames()); err != nil {
		return &ValidationError{Field: "families", Message: err.Error(), Err: err}
	}
	if len(cfg.FamilyNames()) == 0 {
		return &ValidationError{Field: "families", Message: "must name at least one family"}
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
