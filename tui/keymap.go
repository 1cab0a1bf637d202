// Package tui provides the terminal playback interface.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// statefulKeymap defines the keyboard interactions available within the
// playback views. Playback keys themselves are routed through the input
// dispatcher; the bindings here only exist for help rendering and for the
// handful of keys the interface owns outright.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	playPause, seek, seekFrame,
	volume, mute, rate,
	captions, localSubtitles,
	chapter, pip,
	screenshot, stats,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the view state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys("k", " "),
			key.WithHelp("k", "play/pause"),
		),
		seek: key.NewBinding(
			key.WithKeys("j", "l", "left", "right", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("j/l/←/→", "seek"),
		),
		seekFrame: key.NewBinding(
			key.WithKeys(",", "."),
			key.WithHelp(",/.", "frame step"),
		),
		volume: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "volume"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		rate: key.NewBinding(
			key.WithKeys("o", "p"),
			key.WithHelp("o/p", "speed"),
		),
		captions: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "captions"),
		),
		localSubtitles: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "local subtitles"),
		),
		chapter: key.NewBinding(
			key.WithKeys("ctrl+left", "ctrl+right"),
			key.WithHelp("ctrl+←/→", "chapter"),
		),
		pip: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "picture-in-picture"),
		),
		screenshot: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "screenshot"),
		),
		stats: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "stats"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case playingState:
		return h(k.playPause, k.seek, k.volume, k.showHelp, k.quit),
			h(k.playPause, k.seek, k.seekFrame, k.volume, k.mute, k.rate, k.captions, k.localSubtitles, k.chapter, k.pip, k.stats, k.screenshot, k.quit)
	case errorState:
		return to2(h(k.quit, k.forceQuit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
