package result

import (
	"fmt"
	"io"
)

// PrintSummary writes unresolved references and a one-line summary to w.
func PrintSummary(w io.Writer, report *Report) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	unresolved := report.Unresolved()
	if len(unresolved) > 0 {
		writef("Unresolved references:\n")
		for _, ref := range unresolved {
			writef("  line %d: %s (%s)", ref.Line, ref.Text, ref.URL)
			switch {
			case ref.StatusCode != 0:
				writef(" status %d", ref.StatusCode)
			case ref.ErrorCategory != "":
				writef(" %s", FormatCategory(ref.ErrorCategory))
			}
			writef("\n")
		}
	}
	writef("Found %d references, rewrote %d, left %d unchanged (%d probes, %d cache hits)\n",
		report.Stats.Found, report.Stats.Rewritten, report.Stats.Unresolved,
		report.Stats.Probes, report.Stats.CacheHits)
}
