package input

// ScrollMode selects what a scroll gesture over the playback surface adjusts.
type ScrollMode string

const (
	ScrollVolume ScrollMode = "volume"
	ScrollSeek   ScrollMode = "seek"
	ScrollRate   ScrollMode = "rate"
	ScrollNone   ScrollMode = "none"
)

// ParseScrollMode resolves a configured scroll mode, defaulting to volume.
func ParseScrollMode(value string) ScrollMode {
	switch ScrollMode(value) {
	case ScrollSeek, ScrollRate, ScrollNone:
		return ScrollMode(value)
	default:
		return ScrollVolume
	}
}

// DispatchScroll maps a scroll gesture to a playback command. Scrolling up
// (or right) increases, down (or left) decreases. Holding Ctrl or Cmd always
// adjusts the playback rate in fine steps, regardless of the configured mode.
func DispatchScroll(deltaX, deltaY float64, mods Modifiers, mode ScrollMode, state State) (Action, bool) {
	if !state.Loaded {
		return Action{}, false
	}

	up := deltaY < 0 || deltaX > 0
	down := deltaY > 0 || deltaX < 0
	if !up && !down {
		return Action{}, false
	}

	if mods.Ctrl || mods.Meta {
		if up {
			return Action{Command: CommandRateUpFine}, true
		}
		return Action{Command: CommandRateDownFine}, true
	}

	switch mode {
	case ScrollVolume:
		if up {
			return Action{Command: CommandVolumeUp}, true
		}
		return Action{Command: CommandVolumeDown}, true
	case ScrollSeek:
		if !state.Seekable {
			return Action{}, false
		}
		if up {
			return Action{Command: CommandSeekForward}, true
		}
		return Action{Command: CommandSeekBack}, true
	case ScrollRate:
		if up {
			return Action{Command: CommandRateUpFine}, true
		}
		return Action{Command: CommandRateDownFine}, true
	}

	return Action{}, false
}
