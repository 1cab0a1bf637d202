// Package tui provides the terminal playback interface.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg drives the periodic refresh of the playback view.
type tickMsg time.Time

// refreshInterval is the playback view poll rate. The session reacts to
// engine events on its own; the interface only needs to repaint.
const refreshInterval = 250 * time.Millisecond

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner and the periodic view refresh.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, tick())
}
