package pattern

import "fmt"

// ConfigError reports an unusable engine setting. It is raised before any
// input is read so a bad configuration never touches a document.
type ConfigError struct {
	Field  string // Setting name, e.g. "repo"
	Value  string // Offending value
	Reason string
	Err    error // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
