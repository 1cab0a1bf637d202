// Package tui provides the terminal playback interface.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/session"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/sponsor"
)

// Options encapsulates the runtime configuration for the playback interface.
type Options struct {
	Controller *session.Controller
	Engine     engine.Engine
	Source     source.Source

	// Policy and Segments drive the seek bar category markers.
	Policy   sponsor.Policy
	Segments []sponsor.Segment
}

// Run initializes and executes the primary Bubble Tea playback loop. It
// returns once the user quits or the session hits a fatal error; tearing the
// session down afterwards is the caller's responsibility.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(options)
	bubble.newState(playingState)

	_, err := tea.NewProgram(
		bubble,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}
