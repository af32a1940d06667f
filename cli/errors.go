package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/lukemcguire/reflink/config"
	"github.com/lukemcguire/reflink/pattern"
)

// ErrorCategory represents the type of error that ended a run.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid settings or an unusable repository.
	Configuration
	// Runtime errors occur while reading, resolving or writing.
	Runtime
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// ExitCode returns the process exit code for the category.
func (c ErrorCategory) ExitCode() int {
	if c == Runtime {
		return ExitFailure
	}
	return ExitConfigError
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	Category    ErrorCategory
	Message     string
	Remediation []string
	Usage       string
	Err         error
}

func (e *CLIError) Error() string {
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

func newArgumentError(message, usage string, remediation ...string) *CLIError {
	return &CLIError{Category: Argument, Message: message, Usage: usage, Remediation: remediation}
}

// classify turns any run error into a CLIError.
func classify(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var engineErr *pattern.ConfigError
	if errors.As(err, &engineErr) {
		return &CLIError{
			Category:    Configuration,
			Message:     engineErr.Error(),
			Remediation: remediationFor(engineErr.Field),
			Err:         err,
		}
	}

	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return &CLIError{
			Category: Configuration,
			Message:  validationErr.Error(),
			Remediation: []string{
				"Check the value in " + config.DefaultFile + ", the " + config.EnvPrefix + "* environment or the flags",
				"Run 'reflink init' to write a commented config with every option",
			},
			Err: err,
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &CLIError{Category: Runtime, Message: "run cancelled; no file was written", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &CLIError{
			Category:    Runtime,
			Message:     "run timed out; no file was written",
			Remediation: []string{"Raise --timeout or use --retry-profile fast"},
			Err:         err,
		}
	}
	return &CLIError{Category: Runtime, Message: err.Error(), Err: err}
}

func remediationFor(field string) []string {
	switch field {
	case "repo":
		return []string{
			"Pass the repository as owner/name, e.g. --repo acme/widget",
			"Check that the repository exists and is public on the configured --host",
		}
	case "host":
		return []string{"Pass the forge base URL including the scheme, e.g. --host https://github.com"}
	default:
		return []string{"Run 'reflink --help' for the accepted values"}
	}
}

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	usageLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
)

// FormatError renders err for the terminal. Colors are dropped
// automatically when the output is not a terminal.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorLabel("Error"))
	sb.WriteString(" [")
	sb.WriteString(categoryFmt(err.Category.String()))
	sb.WriteString("]: ")
	sb.WriteString(errorMsg(err.Message))
	sb.WriteString("\n")

	if err.Usage != "" {
		sb.WriteString("\n")
		sb.WriteString(usageLabel("Usage: "))
		sb.WriteString(err.Usage)
		sb.WriteString("\n")
	}

	if len(err.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(fixLabel("To fix this:"))
		sb.WriteString("\n")
		for _, step := range err.Remediation {
			sb.WriteString("  ")
			sb.WriteString(bullet("•"))
			sb.WriteString(" ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FprintError prints a formatted CLIError to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(w, FormatError(err))
}
