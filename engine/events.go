package engine

// Event is the closed set of engine notifications. Each variant is a typed
// message; there is no string-keyed dispatch.
type Event interface {
	isEvent()
}

// LoadingEvent signals that a load has started.
type LoadingEvent struct{}

// LoadedEvent signals that the current load completed successfully.
type LoadedEvent struct{}

// BufferingEvent signals a change of the engine's buffering state.
type BufferingEvent struct {
	Buffering bool
}

// ErrorEvent carries an engine-originated playback error.
type ErrorEvent struct {
	Err error
}

// RateChangeEvent signals a playback rate change.
type RateChangeEvent struct {
	Rate float64
}

// AdaptationEvent signals an automatic (ABR-driven) variant change.
type AdaptationEvent struct {
	Track VariantTrack
}

// VariantChangedEvent signals an explicit variant selection taking effect.
type VariantChangedEvent struct {
	Track VariantTrack
}

// TextVisibilityEvent signals a change of native caption visibility.
type TextVisibilityEvent struct {
	Visible bool
}

// TimeUpdateEvent carries the current playback position on each tick.
type TimeUpdateEvent struct {
	Time float64
}

// PlayEvent signals that playback resumed.
type PlayEvent struct{}

// PauseEvent signals that playback was suspended.
type PauseEvent struct{}

// EndedEvent signals that playback ran past the end of the source.
type EndedEvent struct{}

func (LoadingEvent) isEvent()        {}
func (LoadedEvent) isEvent()         {}
func (BufferingEvent) isEvent()      {}
func (ErrorEvent) isEvent()          {}
func (RateChangeEvent) isEvent()     {}
func (AdaptationEvent) isEvent()     {}
func (VariantChangedEvent) isEvent() {}
func (TextVisibilityEvent) isEvent() {}
func (TimeUpdateEvent) isEvent()     {}
func (PlayEvent) isEvent()           {}
func (PauseEvent) isEvent()          {}
func (EndedEvent) isEvent()          {}
