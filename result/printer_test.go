package result

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintSummary_AllResolved(t *testing.T) {
	var buf bytes.Buffer
	report := &Report{}
	report.Add(Reference{Line: 1, Text: "#1", Outcome: OutcomeResolved, Attempts: 1})

	PrintSummary(&buf, report)

	want := "Found 1 references, rewrote 1, left 0 unchanged (1 probes, 0 cache hits)\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintSummary_WithUnresolved(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleReport())

	got := buf.String()
	if !strings.Contains(got, "Unresolved references:") {
		t.Error("missing 'Unresolved references:' header")
	}
	if !strings.Contains(got, "line 5: @ghost (https://github.com/ghost) status 404") {
		t.Errorf("missing unresolved line, got:\n%s", got)
	}
	if strings.Contains(got, "line 3:") {
		t.Error("resolved references should not be listed")
	}
}
