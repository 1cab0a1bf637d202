// Package input translates raw keyboard and scroll gestures into playback
// commands, applying every guard that decides whether a binding is active:
// load state, seekability, source kind, focus and platform modifier rules.
package input

import (
	"runtime"
	"strings"

	"github.com/tubeplay-cli/tubeplay/constant"
)

// Modifiers is the modifier key state accompanying a gesture.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// State is the session snapshot the dispatcher consults for its guards.
type State struct {
	// Loaded is false until the engine finishes loading; no binding fires
	// before that.
	Loaded bool

	// Seekable is false for unseekable live content or an empty seek range.
	Seekable bool

	// AudioOnly disables picture commands: frame stepping, picture in
	// picture and screenshots.
	AudioOnly bool

	// HasCaptions gates the caption visibility toggle.
	HasCaptions bool

	// HasCustomCues gates the local subtitle toggle.
	HasCustomCues bool

	// ChapterCount and ChapterIndex gate chapter jumps.
	ChapterCount int
	ChapterIndex int

	// FullWindow reports whether full-window mode is currently active.
	FullWindow bool

	// TheatrePossible gates the theatre mode toggle.
	TheatrePossible bool

	// ScreenshotEnabled gates the screenshot binding.
	ScreenshotEnabled bool

	// InputFocused suppresses every binding while a text input has focus.
	InputFocused bool

	// Platform selects the chapter-jump modifier; defaults to the build
	// platform when empty.
	Platform string
}

func (s State) platform() string {
	if s.Platform != "" {
		return s.Platform
	}
	return runtime.GOOS
}

// Command is a playback command produced by the dispatcher.
type Command int

const (
	CommandNone Command = iota
	CommandTogglePlay
	CommandSeekBack
	CommandSeekForward
	CommandSeekBackLarge
	CommandSeekForwardLarge
	CommandSeekPercent
	CommandChapterPrevious
	CommandChapterNext
	CommandFrameBack
	CommandFrameForward
	CommandRateDown
	CommandRateUp
	CommandRateDownFine
	CommandRateUpFine
	CommandVolumeDown
	CommandVolumeUp
	CommandToggleMute
	CommandToggleCaptions
	CommandToggleCustomSubtitles
	CommandToggleFullscreen
	CommandToggleFullWindow
	CommandExitFullWindow
	CommandExitAllModes
	CommandToggleTheatre
	CommandTogglePiP
	CommandToggleStats
	CommandScreenshot
)

// Action is a dispatched command. Percent is only meaningful for
// CommandSeekPercent and is a fraction in [0, 0.9].
type Action struct {
	Command Command
	Percent float64
}

// Dispatch maps one key press to a playback command. The boolean is false
// when no binding fires, either because the key is unbound or because a
// guard suppressed it.
func Dispatch(keyName string, mods Modifiers, state State) (Action, bool) {
	if !state.Loaded || state.InputFocused || mods.Alt {
		return Action{}, false
	}

	k := strings.ToLower(keyName)

	// Shift+? backs out of fullscreen and full-window mode.
	if mods.Shift && k == "?" {
		return Action{Command: CommandExitAllModes}, true
	}

	// Ctrl is reserved for the system, except the chapter-jump arrows on
	// non-mac platforms where Ctrl is the jump modifier.
	if mods.Ctrl && (state.platform() == constant.Darwin || (k != "arrowleft" && k != "arrowright")) {
		return Action{}, false
	}
	// Never shadow copy.
	if (mods.Ctrl || mods.Meta) && k == "c" {
		return Action{}, false
	}

	switch k {
	case " ", "spacebar", "k":
		return Action{Command: CommandTogglePlay}, true
	case "j":
		return Action{Command: CommandSeekBackLarge}, true
	case "l":
		return Action{Command: CommandSeekForwardLarge}, true
	case "o":
		return Action{Command: CommandRateDown}, true
	case "p":
		return Action{Command: CommandRateUp}, true
	case "f":
		return Action{Command: CommandToggleFullscreen}, true
	case "m":
		if mods.Meta {
			return Action{}, false
		}
		return Action{Command: CommandToggleMute}, true
	case "c":
		if !state.HasCaptions {
			return Action{}, false
		}
		return Action{Command: CommandToggleCaptions}, true
	case "x":
		if !state.HasCustomCues {
			return Action{}, false
		}
		return Action{Command: CommandToggleCustomSubtitles}, true
	case "arrowup":
		return Action{Command: CommandVolumeUp}, true
	case "arrowdown":
		return Action{Command: CommandVolumeDown}, true
	case "arrowleft":
		if state.canChapterJump(mods, -1) {
			return Action{Command: CommandChapterPrevious}, true
		}
		return Action{Command: CommandSeekBack}, true
	case "arrowright":
		if state.canChapterJump(mods, 1) {
			return Action{Command: CommandChapterNext}, true
		}
		return Action{Command: CommandSeekForward}, true
	case "i":
		if state.AudioOnly {
			return Action{}, false
		}
		return Action{Command: CommandTogglePiP}, true
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if !state.Seekable {
			return Action{}, false
		}
		return Action{
			Command: CommandSeekPercent,
			Percent: float64(k[0]-'0') / 10,
		}, true
	case ",":
		if mods.Meta || !state.canFrameStep() {
			return Action{}, false
		}
		return Action{Command: CommandFrameBack}, true
	case ".":
		if !state.canFrameStep() {
			return Action{}, false
		}
		return Action{Command: CommandFrameForward}, true
	case "d":
		return Action{Command: CommandToggleStats}, true
	case "escape":
		if !state.FullWindow {
			return Action{}, false
		}
		return Action{Command: CommandExitFullWindow}, true
	case "s":
		return Action{Command: CommandToggleFullWindow}, true
	case "t":
		if !state.TheatrePossible {
			return Action{}, false
		}
		return Action{Command: CommandToggleTheatre}, true
	case "u":
		if !state.ScreenshotEnabled || state.AudioOnly {
			return Action{}, false
		}
		return Action{Command: CommandScreenshot}, true
	}

	return Action{}, false
}

// canChapterJump reports whether the arrow press is a chapter jump rather
// than a seek. The jump modifier is Cmd on mac, Ctrl elsewhere, and a jump
// must have a chapter to land on.
func (s State) canChapterJump(mods Modifiers, direction int) bool {
	if s.ChapterCount == 0 {
		return false
	}
	if direction < 0 && s.ChapterIndex <= 0 {
		return false
	}
	if direction > 0 && s.ChapterIndex == s.ChapterCount-1 {
		return false
	}
	if s.platform() == constant.Darwin {
		return mods.Meta
	}
	return mods.Ctrl
}

func (s State) canFrameStep() bool {
	return !s.AudioOnly && s.Seekable
}
