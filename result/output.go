package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the report as indented JSON.
// URLs are written without HTML escaping so they stay copy-pasteable.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per reference. A header row is always written.
// Column order: line, family, text, url, canonical_url, outcome, status_code,
// error_type, attempts, cached
func WriteCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	header := []string{"line", "family", "text", "url", "canonical_url", "outcome", "status_code", "error_type", "attempts", "cached"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, ref := range report.References {
		record := []string{
			strconv.Itoa(ref.Line),
			ref.Family,
			ref.Text,
			ref.URL,
			ref.CanonicalURL,
			ref.Outcome,
			statusCodeStr(ref.StatusCode),
			string(ref.ErrorCategory),
			strconv.Itoa(ref.Attempts),
			strconv.FormatBool(ref.Cached),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record for %s: %w", ref.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv report: %w", err)
	}
	return nil
}

// statusCodeStr renders 0 (no response) as an empty cell.
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
