// Package engine defines a unified abstraction layer for adaptive media playback backends.
//
// The session controller owns exactly one Engine for its lifetime; sub-components
// receive read-only snapshots of engine state and never hold the handle themselves.
package engine

import "context"

// SeekRange is the currently seekable window of a session.
// For live content it is narrower than the total duration.
type SeekRange struct {
	Start float64
	End   float64
}

// Span returns the temporal length of the seekable window.
func (r SeekRange) Span() float64 {
	return r.End - r.Start
}

// VariantTrack is one selectable quality/audio variant reported by the engine.
type VariantTrack struct {
	ID     string
	Active bool

	Width     int
	Height    int
	FrameRate float64

	// Bandwidth is the combined variant bandwidth in bits per second.
	Bandwidth int
	// AudioBandwidth is the audio portion in bits per second, 0 when unknown.
	AudioBandwidth int

	Label      string
	AudioRoles []string

	AudioCodec string
	VideoCodec string
	// OriginalAudioID and OriginalVideoID carry the backend's raw stream
	// identifiers (itag-shaped for some services).
	OriginalAudioID string
	OriginalVideoID string
}

// HasAudioRole reports whether the variant carries the given audio role.
func (t VariantTrack) HasAudioRole(role string) bool {
	for _, r := range t.AudioRoles {
		if r == role {
			return true
		}
	}
	return false
}

// TextTrack is one caption track registered with the engine.
type TextTrack struct {
	ID       string
	Language string
	Label    string
	Active   bool
}

// BufferedRange is one contiguous buffered interval.
type BufferedRange struct {
	Start float64
	End   float64
}

// BufferedInfo reports the engine's buffered media intervals.
type BufferedInfo struct {
	Total []BufferedRange
}

// Seconds sums the length of all buffered intervals.
func (b BufferedInfo) Seconds() float64 {
	var total float64
	for _, r := range b.Total {
		total += r.End - r.Start
	}
	return total
}

// Stats is the raw counter snapshot reported by the engine.
type Stats struct {
	// EstimatedBandwidth is the measured network throughput in bits per second.
	EstimatedBandwidth float64
	DecodedFrames      int
	DroppedFrames      int
	Width              int
	Height             int
}

// Config carries the per-load engine options the session controller manages.
type Config struct {
	// DisableVideo drops all video representations (audio-only sources).
	DisableVideo bool
	// ABREnabled delegates representation choice to the engine's adaptive
	// bitrate logic. When false the session selects variants explicitly.
	ABREnabled bool
}

// Engine encapsulates the required capabilities of a media playback backend.
//
// All blocking operations accept a context. Event delivery uses the typed
// channel returned by Events; the channel is closed when the engine is
// destroyed.
type Engine interface {
	// Load starts playback of the given manifest or media URL at startTime.
	Load(ctx context.Context, uri string, startTime float64, mimeType string) error

	// Unload detaches the current source. Safe to call with nothing loaded.
	Unload(ctx context.Context) error

	// Configure applies per-load options. Takes effect on the next Load.
	Configure(cfg Config)

	// Configuration returns the currently applied options.
	Configuration() Config

	// Events returns the typed event stream for this engine instance.
	Events() <-chan Event

	// SeekRange retrieves the currently seekable window.
	SeekRange() SeekRange

	// IsLive reports whether the loaded source is a live stream.
	IsLive() bool

	// GoToLive seeks to the live edge of a live stream.
	GoToLive()

	// VariantTracks returns all selectable variants of the loaded source.
	VariantTracks() []VariantTrack

	// SelectVariant pins playback to the identified variant.
	SelectVariant(id string)

	// SelectVariantsByLabel restricts adaptive selection to variants carrying
	// the given audio label.
	SelectVariantsByLabel(label string)

	// AddTextTrack registers an external caption track with the engine.
	AddTextTrack(ctx context.Context, uri, language, kind, mimeType, label string) error

	// TextTracks returns all registered caption tracks.
	TextTracks() []TextTrack

	// SelectTextTrack activates the identified caption track.
	SelectTextTrack(id string)

	// SetTextVisibility toggles the engine's native caption rendering.
	SetTextVisibility(visible bool) error

	// IsTextVisible reports whether native caption rendering is on.
	IsTextVisible() bool

	// BufferedInfo retrieves the buffered media intervals.
	BufferedInfo() BufferedInfo

	// Stats retrieves the engine's raw playback counters.
	Stats() Stats

	// Play resumes playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Paused reports the current suspension state.
	Paused() bool

	// Ended reports whether playback ran past the end of the source.
	Ended() bool

	// CurrentTime retrieves the current absolute playback position in seconds.
	CurrentTime() float64

	// SeekTo transitions playback to an absolute position in seconds.
	SeekTo(seconds float64)

	// Duration retrieves the total temporal length of the loaded source.
	Duration() float64

	// PlaybackRate retrieves the current playback rate multiplier.
	PlaybackRate() float64

	// SetPlaybackRate updates the playback rate multiplier.
	SetPlaybackRate(rate float64)

	// Volume retrieves the current volume in [0, 1].
	Volume() float64

	// SetVolume updates the volume, clamped to [0, 1].
	SetVolume(volume float64)

	// Muted reports the mute state.
	Muted() bool

	// SetMuted updates the mute state.
	SetMuted(muted bool)

	// Destroy releases the engine and all associated resources.
	// The event channel is closed after Destroy returns.
	Destroy(ctx context.Context) error
}
