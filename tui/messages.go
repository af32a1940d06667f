package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/reflink/resolver"
	"github.com/lukemcguire/reflink/result"
)

// ProgressMsg carries one resolver event.
type ProgressMsg struct {
	Event resolver.Event
}

// DoneMsg signals the rewrite has completed.
type DoneMsg struct {
	Report *result.Report
	Err    error
}

// eventsClosedMsg is sent once the event channel is closed. The run result
// still arrives separately as a DoneMsg.
type eventsClosedMsg struct{}

// waitForEvent returns a tea.Cmd that reads one event from the channel.
func waitForEvent(ch <-chan resolver.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return ProgressMsg{Event: evt}
	}
}
