package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/reflink/resolver"
	"github.com/lukemcguire/reflink/result"
)

func noopRun(context.Context) (*result.Report, error) {
	return &result.Report{}, nil
}

func TestNewModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan resolver.Event, 10)
	model := NewModel(ctx, cancel, noopRun, events)

	if model.ctx != ctx {
		t.Error("expected ctx to be stored in model")
	}
	if model.cancel == nil {
		t.Error("expected cancel to be stored in model")
	}
	if model.run == nil {
		t.Error("expected run func to be stored in model")
	}
	if model.events != (<-chan resolver.Event)(events) {
		t.Error("expected events channel to be stored in model")
	}
	if model.probes != 0 || model.resolved != 0 || model.failed != 0 {
		t.Error("expected initial counters to be zero")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name   string
		report *result.Report
	}{
		{name: "nil report", report: nil},
		{name: "finished run", report: &result.Report{Stats: result.Stats{Found: 2, Rewritten: 1, Unresolved: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := Model{report: tt.report}
			if model.Report() != tt.report {
				t.Errorf("Report() = %v, want %v", model.Report(), tt.report)
			}
		})
	}
}

func TestErr_QuitBeforeDone(t *testing.T) {
	model := Model{quitting: true}
	if !errors.Is(model.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", model.Err())
	}

	failed := Model{done: true, err: errors.New("boom")}
	if failed.Err() == nil || failed.Err().Error() != "boom" {
		t.Errorf("Err() = %v, want boom", failed.Err())
	}
}

func TestRenderSummary_NilReport(t *testing.T) {
	output := RenderSummary(nil)
	if output == "" {
		t.Error("expected non-empty output for nil report")
	}
}

func TestRenderSummary_AllLinked(t *testing.T) {
	report := &result.Report{}
	for i := 0; i < 3; i++ {
		report.Add(result.Reference{Line: i + 1, Text: "#1", Outcome: result.OutcomeResolved, Attempts: 1})
	}
	report.Stats.Duration = 2 * time.Second

	output := RenderSummary(report)
	if !strings.Contains(output, "All 3 references linked") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "3 probes") {
		t.Errorf("expected probe count in output, got: %s", output)
	}
}

func TestRenderSummary_WithUnresolved(t *testing.T) {
	report := &result.Report{}
	report.Add(result.Reference{
		Line: 3, Family: "issue", Text: "#404",
		URL:     "https://github.com/acme/widget/issues/404",
		Outcome: result.OutcomeNotFound, StatusCode: 404, ErrorCategory: result.Category4xx, Attempts: 1,
	})
	report.Add(result.Reference{
		Line: 7, Family: "handle", Text: "@ghost",
		URL:     "https://github.com/ghost",
		Outcome: result.OutcomeTransientlyFailed, ErrorCategory: result.CategoryConnectionRefused, Attempts: 2,
	})
	report.Add(result.Reference{Line: 9, Text: "#1", Outcome: result.OutcomeResolved, Attempts: 1})

	output := RenderSummary(report)
	for _, want := range []string{"issues/404", "404", "@ghost", "connection_refused", "Linked 1 of 3 references", "2 left unchanged"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
	if strings.Index(output, "Client Errors") > strings.Index(output, "Connection Refused") {
		t.Errorf("expected 4xx group before connection refused, got: %s", output)
	}
}

func TestInit_ReturnsBatchCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewModel(ctx, cancel, noopRun, make(chan resolver.Event, 10))
	if cmd := model.Init(); cmd == nil {
		t.Error("Init() should return a non-nil batch command")
	}
}

func TestStartRun_SendsDoneMsg(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	want := &result.Report{Stats: result.Stats{Found: 1}}
	model := NewModel(ctx, cancel, func(context.Context) (*result.Report, error) { return want, nil }, nil)

	msg := model.startRun()()
	done, ok := msg.(DoneMsg)
	if !ok {
		t.Fatalf("startRun() msg = %T, want DoneMsg", msg)
	}
	if done.Report != want || done.Err != nil {
		t.Errorf("DoneMsg = %+v", done)
	}
}

func TestUpdate_ProgressMsg(t *testing.T) {
	model := Model{events: make(chan resolver.Event, 10)}

	events := []resolver.Event{
		{Kind: resolver.EventAttempt, URL: "https://github.com/acme/widget/issues/1", Attempt: 1},
		{Kind: resolver.EventRetry, URL: "https://github.com/acme/widget/issues/1", Delay: time.Second},
		{Kind: resolver.EventAttempt, URL: "https://github.com/acme/widget/issues/1", Attempt: 2},
		{Kind: resolver.EventResolved, URL: "https://github.com/acme/widget/issues/1"},
		{Kind: resolver.EventCacheHit, URL: "https://github.com/acme/widget/issues/1"},
		{Kind: resolver.EventAttempt, URL: "https://github.com/ghost", Attempt: 1},
		{Kind: resolver.EventFailed, URL: "https://github.com/ghost"},
	}

	var cmd tea.Cmd
	for _, evt := range events {
		var updated tea.Model
		updated, cmd = model.Update(ProgressMsg{Event: evt})
		model = updated.(Model)
	}

	if model.probes != 3 || model.retries != 1 || model.resolved != 1 || model.cacheHits != 1 || model.failed != 1 {
		t.Errorf("counters = probes %d retries %d resolved %d hits %d failed %d",
			model.probes, model.retries, model.resolved, model.cacheHits, model.failed)
	}
	if model.current != "https://github.com/ghost" {
		t.Errorf("expected current URL to be set, got %s", model.current)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to the event channel")
	}
}

func TestUpdate_EventsClosed(t *testing.T) {
	ch := make(chan resolver.Event)
	close(ch)

	msg := waitForEvent(ch)()
	if _, ok := msg.(eventsClosedMsg); !ok {
		t.Fatalf("waitForEvent() msg = %T, want eventsClosedMsg", msg)
	}

	updated, cmd := Model{}.Update(msg)
	if updated.(Model).done {
		t.Error("closing the event channel must not finish the run")
	}
	if cmd != nil {
		t.Error("expected no cmd after the channel closes")
	}
}

func TestUpdate_DoneMsg(t *testing.T) {
	report := &result.Report{Stats: result.Stats{Found: 1, Unresolved: 1}}

	updatedModel, cmd := Model{}.Update(DoneMsg{Report: report})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after DoneMsg")
	}
	if updated.report != report {
		t.Error("expected report to be stored")
	}
	if cmd == nil {
		t.Error("expected quit cmd after DoneMsg")
	}
}

func TestUpdate_QuitKeyCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewModel(ctx, cancel, noopRun, nil)
	updatedModel, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	updated := updatedModel.(Model)

	if !updated.quitting {
		t.Error("expected quitting=true after q")
	}
	if ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model) // should not panic
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	updatedModel, _ := Model{}.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if updated := updatedModel.(Model); updated.width != 120 {
		t.Errorf("expected width=120, got %d", updated.width)
	}
}

func TestView_InProgress(t *testing.T) {
	model := Model{
		probes:   3,
		resolved: 1,
		current:  "https://github.com/acme/widget/issues/7",
	}
	output := model.View()
	if !strings.Contains(output, "Resolving") {
		t.Errorf("expected 'Resolving' in progress view, got: %s", output)
	}
	if !strings.Contains(output, "3 probes") {
		t.Errorf("expected probe count in view, got: %s", output)
	}
}

func TestView_DoneWithReport(t *testing.T) {
	model := Model{done: true, report: &result.Report{Stats: result.Stats{Duration: time.Second}}}
	if output := model.View(); !strings.Contains(output, "All 0 references linked") {
		t.Errorf("expected success message in done view, got: %s", output)
	}
}

func TestView_DoneWithError(t *testing.T) {
	model := Model{done: true, err: context.Canceled}
	if output := model.View(); !strings.Contains(output, "Error") {
		t.Errorf("expected error message in done view, got: %s", output)
	}
}
