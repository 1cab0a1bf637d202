// Package enginetest provides an in-memory Engine implementation for unit tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tubeplay-cli/tubeplay/engine"
)

// Fake is a scripted, in-memory playback engine. All state transitions are
// synchronous; tests drive events explicitly through Emit.
type Fake struct {
	mu sync.Mutex

	cfg    engine.Config
	events chan engine.Event

	// Scripted state, set by tests before exercising the session.
	Variants  []engine.VariantTrack
	Range     engine.SeekRange
	Live      bool
	Buffered  engine.BufferedInfo
	RawStats  engine.Stats
	TotalTime float64

	// LoadErr, when set, makes the next Load fail.
	LoadErr error

	// LoadHold and LoadResume, when both set, make the next Load signal on
	// LoadHold and then block until LoadResume is closed. One-shot.
	LoadHold   chan struct{}
	LoadResume chan struct{}

	loaded      bool
	paused      bool
	ended       bool
	currentTime float64
	rate        float64
	volume      float64
	muted       bool
	textVisible bool
	textTracks  []engine.TextTrack

	// Call records for assertions.
	LoadCalls     []LoadCall
	UnloadCount   int
	DestroyCount  int
	SelectedIDs   []string
	SelectedLabel string
}

// LoadCall records one Load invocation.
type LoadCall struct {
	URI       string
	StartTime float64
	MimeType  string
}

// New returns a Fake with a buffered event channel and sane defaults.
func New() *Fake {
	return &Fake{
		events: make(chan engine.Event, 64),
		rate:   1,
		volume: 1,
		paused: true,
	}
}

// Emit injects an event into the stream, as the real backend would.
func (f *Fake) Emit(ev engine.Event) {
	f.events <- ev
}

// CloseEvents closes the event stream. Tests call this to unblock consumers.
func (f *Fake) CloseEvents() {
	close(f.events)
}

func (f *Fake) Load(_ context.Context, uri string, startTime float64, mimeType string) error {
	f.mu.Lock()
	hold, resume := f.LoadHold, f.LoadResume
	f.LoadHold, f.LoadResume = nil, nil
	f.mu.Unlock()
	if hold != nil && resume != nil {
		hold <- struct{}{}
		<-resume
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.LoadCalls = append(f.LoadCalls, LoadCall{URI: uri, StartTime: startTime, MimeType: mimeType})
	if f.LoadErr != nil {
		err := f.LoadErr
		f.LoadErr = nil
		return err
	}
	f.loaded = true
	f.ended = false
	f.currentTime = startTime
	return nil
}

func (f *Fake) Unload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.UnloadCount++
	f.loaded = false
	f.textTracks = nil
	return nil
}

func (f *Fake) Configure(cfg engine.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func (f *Fake) Configuration() engine.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *Fake) Events() <-chan engine.Event {
	return f.events
}

func (f *Fake) SeekRange() engine.SeekRange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Range
}

func (f *Fake) IsLive() bool {
	return f.Live
}

func (f *Fake) GoToLive() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentTime = f.Range.End
}

func (f *Fake) VariantTracks() []engine.VariantTrack {
	f.mu.Lock()
	defer f.mu.Unlock()

	tracks := make([]engine.VariantTrack, len(f.Variants))
	copy(tracks, f.Variants)
	return tracks
}

func (f *Fake) SelectVariant(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SelectedIDs = append(f.SelectedIDs, id)
	for i := range f.Variants {
		f.Variants[i].Active = f.Variants[i].ID == id
	}
}

func (f *Fake) SelectVariantsByLabel(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SelectedLabel = label
}

func (f *Fake) AddTextTrack(_ context.Context, uri, language, _, _, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.textTracks = append(f.textTracks, engine.TextTrack{
		ID:       fmt.Sprintf("text-%d", len(f.textTracks)),
		Language: language,
		Label:    label,
	})
	_ = uri
	return nil
}

func (f *Fake) TextTracks() []engine.TextTrack {
	f.mu.Lock()
	defer f.mu.Unlock()

	tracks := make([]engine.TextTrack, len(f.textTracks))
	copy(tracks, f.textTracks)
	return tracks
}

func (f *Fake) SelectTextTrack(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.textTracks {
		f.textTracks[i].Active = f.textTracks[i].ID == id
	}
}

func (f *Fake) SetTextVisibility(visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textVisible = visible
	return nil
}

func (f *Fake) IsTextVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textVisible
}

func (f *Fake) BufferedInfo() engine.BufferedInfo {
	return f.Buffered
}

func (f *Fake) Stats() engine.Stats {
	return f.RawStats
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

func (f *Fake) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

// SetEnded marks playback as run past the end of the source.
func (f *Fake) SetEnded(ended bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = ended
}

func (f *Fake) Ended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ended
}

func (f *Fake) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentTime
}

func (f *Fake) SeekTo(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentTime = seconds
}

func (f *Fake) Duration() float64 {
	return f.TotalTime
}

func (f *Fake) PlaybackRate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

func (f *Fake) SetPlaybackRate(rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
}

func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	f.volume = volume
}

func (f *Fake) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *Fake) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
}

func (f *Fake) Destroy(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DestroyCount++
	f.loaded = false
	return nil
}
