// Package tui provides the terminal playback interface.
package tui

import (
	"strings"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/input"
	"github.com/tubeplay-cli/tubeplay/key"
	"github.com/tubeplay-cli/tubeplay/session"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case tickMsg:
		return b, tea.Batch(tick(), b.syncState())
	case tea.MouseMsg:
		b.handleScroll(msg)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		default:
			b.handleKey(msg)
		}
	}

	return b, nil
}

// syncState aligns the view state with the session state machine.
func (b *statefulBubble) syncState() tea.Cmd {
	switch b.options.Controller.State() {
	case session.StateErrored:
		if b.state != errorState {
			b.raiseError(b.options.Controller.Err())
		}
	case session.StateLoading, session.StateIdle:
		b.newState(loadingState)
	default:
		if b.state != errorState {
			b.newState(playingState)
		}
	}
	return nil
}

// handleKey routes a playback key press through the input dispatcher.
func (b *statefulBubble) handleKey(msg tea.KeyMsg) {
	name, mods := translateKey(msg)
	if name == "" {
		return
	}

	controller := b.options.Controller
	action, ok := input.Dispatch(name, mods, controller.InputState())
	if !ok {
		return
	}
	controller.Execute(action)
}

// handleScroll routes mouse wheel events through the scroll dispatcher.
func (b *statefulBubble) handleScroll(msg tea.MouseMsg) {
	var deltaX, deltaY float64
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		deltaY = -1
	case tea.MouseButtonWheelDown:
		deltaY = 1
	case tea.MouseButtonWheelLeft:
		deltaX = -1
	case tea.MouseButtonWheelRight:
		deltaX = 1
	default:
		return
	}

	controller := b.options.Controller
	mode := input.ParseScrollMode(viper.GetString(key.PlaybackScrollMode))
	mods := input.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt}
	if action, ok := input.DispatchScroll(deltaX, deltaY, mods, mode, controller.InputState()); ok {
		controller.Execute(action)
	}
}

// translateKey converts a Bubble Tea key press into the dispatcher's key
// name and modifier set. Keys the dispatcher has no name for return "".
func translateKey(msg tea.KeyMsg) (string, input.Modifiers) {
	var mods input.Modifiers

	name := msg.String()
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+"):
			mods.Ctrl = true
			name = strings.TrimPrefix(name, "ctrl+")
		case strings.HasPrefix(name, "alt+"):
			mods.Alt = true
			name = strings.TrimPrefix(name, "alt+")
		case strings.HasPrefix(name, "shift+"):
			mods.Shift = true
			name = strings.TrimPrefix(name, "shift+")
		default:
			switch name {
			case "up":
				return "arrowup", mods
			case "down":
				return "arrowdown", mods
			case "left":
				return "arrowleft", mods
			case "right":
				return "arrowright", mods
			case "esc":
				return "escape", mods
			}
			if len([]rune(name)) == 1 {
				return name, mods
			}
			return "", mods
		}
	}
}
