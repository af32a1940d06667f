// Package result holds the per-run resolution report: one record per matched
// reference, aggregate statistics, and writers for JSON, CSV and plain text.
package result

import "time"

// Outcome values recorded for a reference.
const (
	OutcomeResolved          = "resolved"
	OutcomeNotFound          = "not_found"
	OutcomeTransientlyFailed = "transiently_failed"
)

// Reference records what happened to a single matched reference.
type Reference struct {
	Line          int           `json:"line"`                    // 1-based line of the match in the pass text
	Family        string        `json:"family"`                  // issue, commit or handle
	Text          string        `json:"text"`                    // Original matched display text
	URL           string        `json:"url"`                     // Candidate URL that was probed
	CanonicalURL  string        `json:"canonical_url,omitempty"` // Final URL after redirects (resolved only)
	Outcome       string        `json:"outcome"`                 // One of the Outcome constants
	StatusCode    int           `json:"status_code"`             // Last HTTP status code (0 if unreachable)
	ErrorCategory ErrorCategory `json:"error_type,omitempty"`    // Classification of the last failure
	Attempts      int           `json:"attempts"`                // Probes issued for this URL (0 when cached)
	Cached        bool          `json:"cached"`                  // Outcome served from the run cache
}

// Rewritten reports whether the reference was turned into a link.
func (r Reference) Rewritten() bool {
	return r.Outcome == OutcomeResolved
}

// Stats contains aggregate statistics for one run.
type Stats struct {
	Found      int           `json:"found"`      // References matched across all passes
	Rewritten  int           `json:"rewritten"`  // References replaced with a link
	Unresolved int           `json:"unresolved"` // References left unchanged
	Probes     int           `json:"probes"`     // Network probes issued
	CacheHits  int           `json:"cache_hits"` // References answered from the cache
	Duration   time.Duration `json:"duration_ns"`
}

// Report is the complete outcome of a rewrite run.
type Report struct {
	References []Reference `json:"references"`
	Stats      Stats       `json:"stats"`
}

// Add appends ref and updates the counters.
func (r *Report) Add(ref Reference) {
	r.References = append(r.References, ref)
	r.Stats.Found++
	r.Stats.Probes += ref.Attempts
	if ref.Cached {
		r.Stats.CacheHits++
	}
	if ref.Rewritten() {
		r.Stats.Rewritten++
	} else {
		r.Stats.Unresolved++
	}
}

// Unresolved returns the references that were left unchanged.
func (r *Report) Unresolved() []Reference {
	var out []Reference
	for _, ref := range r.References {
		if !ref.Rewritten() {
			out = append(out, ref)
		}
	}
	return out
}
