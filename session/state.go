package session

// State is the lifecycle phase of a playback session.
type State int

const (
	// StateIdle is the rest state, before load and after teardown.
	StateIdle State = iota

	// StateLoading covers the window between a load request and the engine
	// reporting the presentation ready.
	StateLoading

	// StateReady means playback is possible and commands are live.
	StateReady

	// StateSwitching covers an in-place source kind change, which unloads
	// and reloads the engine while preserving position and quality.
	StateSwitching

	// StateUnloading covers teardown of the active presentation.
	StateUnloading

	// StateErrored is entered on the first fatal error and is terminal
	// until teardown.
	StateErrored
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateLoading:   "loading",
	StateReady:     "ready",
	StateSwitching: "switching",
	StateUnloading: "unloading",
	StateErrored:   "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
