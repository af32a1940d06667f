package config

import (
	"time"

	"github.com/lukemcguire/reflink/resolver"
)

// Defaults returns the built-in value of every key that has one. Retry
// schedule keys are absent so the profile decides them.
func Defaults() map[string]any {
	return map[string]any{
		"host":             "https://github.com",
		"retry_profile":    resolver.ProfileFull,
		"timeout":          time.Duration(0),
		"request_timeout":  10 * time.Second,
		"user_agent":       resolver.DefaultUserAgent,
		"rate_limit":       10.0,
		"concurrency":      1,
		"respect_robots":   false,
		"protect_markdown": true,
		"issue_boundary":   "strict",
		"commit_heuristic": false,
		"families":         "issue,commit,handle",
		"report_format":    "json",
		"log_level":        "info",
		"log_format":       "text",
	}
}

// Template returns a commented config file with the default values.
func Template() string {
	return `# reflink configuration
repo: ""                      # owner/name; required for issue and commit links
host: https://github.com      # Forge base URL

retry_profile: full           # full | fast
# max_attempts: 15            # Override the profile's attempt ceiling
# base_delay: 2.75s           # Override the profile's first delay
# retry_step: 250ms           # Added per attempt
# max_delay: 0s               # Cap on a single delay (0 = none)

timeout: 0s                   # Whole run (0 = none)
request_timeout: 10s          # Single probe
rate_limit: 10                # Requests per second (0 = unlimited)
concurrency: 1                # Parallel resolutions per pass
respect_robots: false         # Honor robots.txt on the forge host

protect_markdown: true        # Skip code, raw HTML and existing links
issue_boundary: strict        # strict | loose
commit_heuristic: false       # Skip short hashes that are all digits or all letters
families: issue,commit,handle

report_format: json           # json | csv
log_level: info               # debug | info | warn | error
log_format: text              # text | json
`
}
