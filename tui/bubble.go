// Package tui provides the terminal playback interface.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/tubeplay-cli/tubeplay/util"
)

// statefulBubble encapsulates the playback interface state, including
// component models and the active view.
type statefulBubble struct {
	state state

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	lastError error

	width, height int

	options *Options
}

// raiseError dispatches a terminal error and transitions to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// newState transitions the interface and its keymap to a target state.
func (b *statefulBubble) newState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.progressC.Width = util.Min(b.width, 60)
	b.helpC.Width = b.width
}

// newBubble performs a complete initialization of the playback UI model.
func newBubble(options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:  newStatefulKeymap(),
		options: options,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient())
	bubble.progressC.ShowPercentage = false

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
