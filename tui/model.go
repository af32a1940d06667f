// Package tui provides the Bubble Tea terminal UI for reflink, displaying
// live resolution progress and a styled summary of unresolved references.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/reflink/resolver"
	"github.com/lukemcguire/reflink/result"
)

// RunFunc performs the rewrite and returns its report.
type RunFunc func(ctx context.Context) (*result.Report, error)

// Model is the Bubble Tea model for the rewrite TUI.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	run     RunFunc
	spinner spinner.Model
	events  <-chan resolver.Event

	probes    int
	retries   int
	cacheHits int
	resolved  int
	failed    int
	current   string
	quitting  bool
	done      bool
	report    *result.Report
	err       error
	width     int
}

// NewModel creates a TUI model that executes run and follows events.
func NewModel(ctx context.Context, cancel context.CancelFunc, run RunFunc, events <-chan resolver.Event) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		spinner: spin,
		events:  events,
	}
}

// Init starts the spinner, the rewrite, and the event listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), waitForEvent(m.events))
}

// startRun returns a tea.Cmd that runs the rewrite and sends DoneMsg.
func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		report, err := m.run(m.ctx)
		return DoneMsg{Report: report, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.observe(msg.Event)
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case DoneMsg:
		m.done = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) observe(evt resolver.Event) {
	switch evt.Kind {
	case resolver.EventAttempt:
		m.probes++
		m.current = evt.URL
	case resolver.EventRetry:
		m.retries++
		m.current = fmt.Sprintf("%s (retry in %s)", evt.URL, evt.Delay)
	case resolver.EventCacheHit:
		m.cacheHits++
	case resolver.EventResolved:
		m.resolved++
	case resolver.EventFailed:
		m.failed++
	}
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.done {
		return RenderSummary(m.report)
	}
	return fmt.Sprintf("%s Resolving... %d probes, %d resolved, %d failed, %d cache hits\n%s\n",
		m.spinner.View(), m.probes, m.resolved, m.failed, m.cacheHits,
		dimStyle.Render("  "+m.current))
}

// Report returns the run report, or nil if the run did not finish.
func (m Model) Report() *result.Report {
	return m.report
}

// Err returns the run error. A user quit before completion reports
// context.Canceled.
func (m Model) Err() error {
	if m.quitting && !m.done {
		return context.Canceled
	}
	return m.err
}
