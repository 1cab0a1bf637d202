// Package session implements the playback session controller: the lifecycle
// state machine that owns exactly one engine, drives loading, quality
// selection, captions, sponsor skipping and teardown, and turns dispatched
// input commands into engine operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/samber/mo"

	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/log"
	"github.com/tubeplay-cli/tubeplay/quality"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/sponsor"
	"github.com/tubeplay-cli/tubeplay/stats"
	"github.com/tubeplay-cli/tubeplay/subtitle"
)

// rateFloor is the lowest playback rate a step can land on.
const rateFloor = 0.07

// errSuperseded marks a load abandoned because a kind switch restarted it.
// The superseded load's continuation becomes a no-op.
var errSuperseded = errors.New("load superseded")

// Intent captures the presentation modes active at teardown so the next
// session can start in the same ones.
type Intent struct {
	Fullscreen bool
	FullWindow bool
	PiP        bool
}

// Options carries the optional collaborators of a controller.
type Options struct {
	// Blocker keeps the system awake during playback. Nil disables it.
	Blocker Blocker

	// Skipper drives sponsor segment skipping. Nil disables it.
	Skipper *sponsor.Skipper

	// PreferredLanguage orders caption tracks on load.
	PreferredLanguage string

	// RateInterval and RateMax bound the playback rate steps.
	RateInterval float64
	RateMax      float64

	// SkipInterval is the base seek distance in seconds.
	SkipInterval float64

	// ScreenshotEnabled gates the screenshot command.
	ScreenshotEnabled bool

	// Autoplay starts playback as soon as the load finishes. When false the
	// session comes up paused.
	Autoplay bool

	// TheatrePossible marks hosts whose layout has a theatre arrangement.
	// It gates the theatre mode toggle.
	TheatrePossible bool
}

// Controller is the playback session state machine. One controller owns one
// engine for its whole lifetime; a new source means a new controller.
type Controller struct {
	eng     engine.Engine
	src     source.Source
	target  quality.Target
	opts    Options
	lock    wakeLock
	popup   popup
	skipper *sponsor.Skipper

	mu             sync.Mutex
	state          State
	loadGen        uint64
	kind           source.Kind
	agg            *stats.Aggregator
	live           bool
	buffering      bool
	suppressErrors bool
	fatal          error
	activeLegacy   mo.Option[source.LegacyFormat]
	restoreCaption mo.Option[int]
	multipleAudio  bool
	textVisible    bool

	customCues    []subtitle.Cue
	customEnabled bool

	fullscreen   bool
	fullWindow   bool
	pip          bool
	theatre      bool
	statsVisible bool

	// OnError observes the first fatal error. Called once per session.
	OnError func(error)

	// OnEnded observes the end of playback.
	OnEnded func()

	// OnScreenshot captures the current frame; wired by the presentation
	// layer. Nil disables the screenshot command.
	OnScreenshot func() error
}

// New builds a controller around an engine and the source it will play.
func New(eng engine.Engine, src source.Source, target quality.Target, opts Options) *Controller {
	return &Controller{
		eng:     eng,
		src:     src,
		target:  target,
		opts:    opts,
		lock:    wakeLock{blocker: opts.Blocker},
		skipper: opts.Skipper,
		state:   StateIdle,
		kind:    src.Kind,
		agg:     stats.New(src.Kind),
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the fatal error, if the session has one.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// Load brings the session from idle to ready: it configures the engine for
// the source kind, loads the presentation at the start position, applies the
// configured quality and attaches caption tracks.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("load from %s state", state)
	}
	c.state = StateLoading
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	c.eng.Configure(engine.Config{
		DisableVideo: c.src.Kind == source.AudioOnly,
		ABREnabled:   c.target.IsAuto(),
	})

	if err := c.performFirstLoad(ctx, c.src.StartTime, gen); err != nil {
		if errors.Is(err, errSuperseded) || !c.loadCurrent(gen) {
			return nil
		}
		c.handleError(err)
		return err
	}

	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		return nil
	}
	c.live = c.eng.IsLive()
	c.multipleAudio = hasMultipleAudioTracks(c.eng.VariantTracks())
	c.mu.Unlock()

	c.attachCaptions(ctx)
	c.restoreCaptionTrack()

	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		return nil
	}
	if c.fatal != nil {
		fatal := c.fatal
		c.mu.Unlock()
		return fatal
	}
	c.state = StateReady
	c.mu.Unlock()

	if !c.opts.Autoplay {
		_ = c.eng.Pause()
	}
	return nil
}

// loadCurrent reports whether gen is still the newest load generation. A
// stale generation means a switch restarted the load underneath us.
func (c *Controller) loadCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.loadGen
}

// performFirstLoad mirrors the initial load path: adaptive and audio sources
// load their manifest then pin the configured quality, legacy sources pick a
// discrete format and load its URL directly.
func (c *Controller) performFirstLoad(ctx context.Context, position float64, gen uint64) error {
	if c.src.Kind == source.Legacy {
		target := math.MaxInt
		if !c.target.IsAuto() {
			target = c.target.Dimension()
		}
		return c.loadLegacy(ctx, quality.SelectLegacy(target, c.src.LegacyFormats), position, gen)
	}

	if err := c.eng.Load(ctx, c.src.ManifestURI, position, c.src.MimeType); err != nil {
		return err
	}
	if !c.loadCurrent(gen) {
		return errSuperseded
	}

	if c.target.IsAuto() {
		return nil
	}

	variants := c.eng.VariantTracks()
	if len(variants) == 0 {
		return nil
	}
	if c.src.Kind == source.AudioOnly {
		candidates := variants
		if hasMultipleAudioTracks(variants) {
			candidates = mainRoleVariants(variants)
		}
		chosen := quality.HighestAudioBandwidth(candidates)
		c.eng.SelectVariant(chosen.ID)
		c.agg.UpdateQuality(chosen)
		return nil
	}

	c.applyQuality(c.target.Dimension(), mo.None[int](), mo.None[string]())
	return nil
}

func (c *Controller) loadLegacy(ctx context.Context, format source.LegacyFormat, position float64, gen uint64) error {
	if err := c.eng.Load(ctx, format.URL, position, format.MimeType); err != nil {
		return err
	}
	if !c.loadCurrent(gen) {
		return errSuperseded
	}

	c.mu.Lock()
	c.activeLegacy = mo.Some(format)
	c.multipleAudio = false
	c.mu.Unlock()

	if err := c.agg.UpdateLegacyQuality(format); err != nil {
		log.Warnf("legacy format stats: %v", err)
	}
	return nil
}

// applyQuality selects the representation for an explicit dimension target,
// carrying over any prior audio identity.
func (c *Controller) applyQuality(dimension int, audioBandwidth mo.Option[int], label mo.Option[string]) {
	variants := c.eng.VariantTracks()
	if len(variants) == 0 {
		return
	}

	c.mu.Lock()
	multiple := c.multipleAudio
	c.mu.Unlock()

	chosen := quality.Select(dimension, variants, quality.Context{
		AudioLabel:          label,
		AudioBandwidth:      audioBandwidth,
		MultipleAudioTracks: multiple,
	})
	c.eng.SelectVariant(chosen.ID)
	c.agg.UpdateQuality(chosen)
}

// attachCaptions registers the source's caption tracks, preferred language
// first. Caption failures never take the session down.
func (c *Controller) attachCaptions(ctx context.Context) {
	for _, caption := range source.SortCaptions(c.src.Captions, c.opts.PreferredLanguage) {
		err := c.eng.AddTextTrack(ctx, caption.URL, caption.Language, "captions", caption.MimeType, caption.Label)
		if err != nil {
			c.handleError(err)
		}
	}
}

// restoreCaptionTrack reactivates the caption track that was visible before
// a source kind switch.
func (c *Controller) restoreCaptionTrack() {
	c.mu.Lock()
	index, ok := c.restoreCaption.Get()
	c.restoreCaption = mo.None[int]()
	c.mu.Unlock()
	if !ok {
		return
	}

	tracks := c.eng.TextTracks()
	if index < 0 || index >= len(tracks) {
		return
	}
	c.eng.SelectTextTrack(tracks[index].ID)
	if err := c.eng.SetTextVisibility(true); err != nil {
		c.handleError(err)
	}
}

// Switch changes the source kind in place, unloading and reloading the
// engine while preserving the playback position, pause state, active caption
// and as much of the active quality as the new kind can express.
func (c *Controller) Switch(ctx context.Context, newKind source.Kind) error {
	c.mu.Lock()
	switch c.state {
	case StateReady:
	case StateLoading:
		// A switch before the first load finishes restarts the load under
		// the new kind. Bumping the generation turns the in-flight load's
		// continuation into a no-op.
		c.suppressErrors = true
		c.kind = newKind
		c.src.Kind = newKind
		c.agg = stats.New(newKind)
		c.loadGen++
		gen := c.loadGen
		c.mu.Unlock()

		_ = c.eng.Unload(ctx)
		c.setSuppress(false)
		c.eng.Configure(engine.Config{
			DisableVideo: newKind == source.AudioOnly,
			ABREnabled:   c.target.IsAuto(),
		})
		if err := c.performFirstLoad(ctx, c.src.StartTime, gen); err != nil {
			if errors.Is(err, errSuperseded) {
				return nil
			}
			c.handleError(err)
			return err
		}
		c.mu.Lock()
		c.state = StateReady
		c.mu.Unlock()
		return nil
	default:
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("switch from %s state", state)
	}

	oldKind := c.kind
	c.state = StateSwitching
	c.suppressErrors = true
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()

	wasPaused := c.eng.Paused()
	if !wasPaused {
		_ = c.eng.Pause()
	}
	position := c.eng.CurrentTime()
	c.captureCaption()

	useAuto := c.target.IsAuto()
	if oldKind != source.Legacy {
		useAuto = c.eng.Configuration().ABREnabled
	}

	var err error
	if newKind == source.Legacy {
		err = c.switchToLegacy(ctx, oldKind, position, gen)
	} else {
		err = c.switchToAdaptive(ctx, oldKind, newKind, position, useAuto)
	}
	if err != nil {
		c.handleError(err)
		return err
	}

	c.mu.Lock()
	c.kind = newKind
	c.src.Kind = newKind
	c.live = c.eng.IsLive()
	c.mu.Unlock()

	c.attachCaptions(ctx)
	c.restoreCaptionTrack()

	if wasPaused {
		_ = c.eng.Pause()
	} else {
		_ = c.eng.Play()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fatal != nil {
		return c.fatal
	}
	c.state = StateReady
	return nil
}

// captureCaption remembers the visible caption track across a switch and
// hides it so the reload starts clean.
func (c *Controller) captureCaption() {
	active := -1
	for i, track := range c.eng.TextTracks() {
		if track.Active {
			active = i
			break
		}
	}

	c.mu.Lock()
	if active >= 0 && c.eng.IsTextVisible() {
		c.restoreCaption = mo.Some(active)
	} else {
		c.restoreCaption = mo.None[int]()
	}
	c.mu.Unlock()

	if active >= 0 {
		_ = c.eng.SetTextVisibility(false)
	}
}

func (c *Controller) switchToAdaptive(ctx context.Context, oldKind, newKind source.Kind, position float64, useAuto bool) error {
	var label mo.Option[string]
	var audioBandwidth mo.Option[int]
	dimension := 0

	if oldKind == source.Legacy {
		if format, ok := c.activeLegacyFormat().Get(); ok && !useAuto && newKind == source.Adaptive {
			dimension = smallerDimension(format.Width, format.Height)
		}
	} else {
		if track, ok := activeVariant(c.eng.VariantTracks()); ok {
			if track.AudioBandwidth > 0 {
				audioBandwidth = mo.Some(track.AudioBandwidth)
			}
			if track.Label != "" {
				label = mo.Some(track.Label)
			}
		}
	}

	if oldKind == source.AudioOnly && newKind == source.Adaptive && !useAuto {
		if c.target.IsAuto() {
			useAuto = true
		} else {
			dimension = c.target.Dimension()
		}
	}

	_ = c.eng.Unload(ctx)
	c.setSuppress(false)
	c.eng.Configure(engine.Config{
		DisableVideo: newKind == source.AudioOnly,
		ABREnabled:   useAuto,
	})
	c.mu.Lock()
	c.agg = stats.New(newKind)
	c.activeLegacy = mo.None[source.LegacyFormat]()
	c.mu.Unlock()

	if err := c.eng.Load(ctx, c.src.ManifestURI, position, c.src.MimeType); err != nil {
		return err
	}

	c.mu.Lock()
	c.multipleAudio = hasMultipleAudioTracks(c.eng.VariantTracks())
	c.mu.Unlock()

	if useAuto {
		if l, ok := label.Get(); ok {
			c.eng.SelectVariantsByLabel(l)
		}
		return nil
	}

	if dimension > 0 {
		c.applyQuality(dimension, audioBandwidth, label)
		return nil
	}

	variants := c.eng.VariantTracks()
	if l, ok := label.Get(); ok {
		if filtered := variantsWithLabel(variants, l); len(filtered) > 0 {
			variants = filtered
		}
	}
	if len(variants) == 0 {
		return nil
	}

	var chosen engine.VariantTrack
	if bandwidth, ok := audioBandwidth.Get(); ok {
		chosen = quality.MostSimilarAudioBandwidth(variants, bandwidth)
	} else {
		chosen = variants[0]
		for _, t := range variants[1:] {
			if t.Bandwidth > chosen.Bandwidth {
				chosen = t
			}
		}
	}
	c.eng.SelectVariant(chosen.ID)
	c.agg.UpdateQuality(chosen)
	return nil
}

func (c *Controller) switchToLegacy(ctx context.Context, oldKind source.Kind, position float64, gen uint64) error {
	previousQuality := math.MaxInt
	if oldKind == source.Adaptive {
		if track, ok := activeVariant(c.eng.VariantTracks()); ok {
			previousQuality = smallerDimension(track.Width, track.Height)
		}
	} else if !c.target.IsAuto() {
		previousQuality = c.target.Dimension()
	}

	_ = c.eng.Unload(ctx)
	c.setSuppress(false)
	c.mu.Lock()
	c.agg = stats.New(source.Legacy)
	c.mu.Unlock()

	return c.loadLegacy(ctx, quality.SelectLegacy(previousQuality, c.src.LegacyFormats), position, gen)
}

// Unload detaches the presentation and returns the session to idle without
// destroying the engine.
func (c *Controller) Unload(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return nil
	}
	c.state = StateUnloading
	c.suppressErrors = true
	c.mu.Unlock()

	err := c.eng.Unload(ctx)
	c.lock.stop()

	c.mu.Lock()
	c.state = StateIdle
	c.suppressErrors = false
	c.activeLegacy = mo.None[source.LegacyFormat]()
	c.mu.Unlock()
	return err
}

// Teardown destroys the engine and every timer the session owns, and reports
// which presentation modes were active so the next session can restore them.
// Safe to call in any state, including mid-load.
func (c *Controller) Teardown(ctx context.Context) (Intent, error) {
	c.mu.Lock()
	c.suppressErrors = true
	c.state = StateUnloading
	intent := Intent{
		Fullscreen: c.fullscreen,
		FullWindow: c.fullWindow,
		PiP:        c.pip,
	}
	c.fullWindow = false
	c.mu.Unlock()

	if c.skipper != nil {
		c.skipper.Stop()
	}
	c.popup.stop()
	c.lock.stop()

	err := c.eng.Destroy(ctx)

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	return intent, err
}

// handleError is the single fatal-error funnel. Filter wrappers are peeled
// off first; caption failures are logged and discarded; everything else is
// fatal exactly once, unless a deliberate unload is in flight.
func (c *Controller) handleError(err error) {
	root := engine.RootCause(err)
	log.Errorf("playback %s: %v", c.src.VideoID, root)

	if engine.IsTextError(root) {
		return
	}

	c.mu.Lock()
	if c.suppressErrors {
		c.mu.Unlock()
		return
	}
	c.suppressErrors = true
	c.fatal = root
	c.state = StateErrored
	callback := c.OnError
	c.mu.Unlock()

	c.lock.stop()
	if callback != nil {
		callback(root)
	}
}

func (c *Controller) setSuppress(v bool) {
	c.mu.Lock()
	c.suppressErrors = v
	c.mu.Unlock()
}

// Run consumes the engine's event stream until it closes or the context is
// cancelled. It drives the wake lock, error funnel, stats and sponsor skips.
func (c *Controller) Run(ctx context.Context) {
	events := c.eng.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(event)
		}
	}
}

func (c *Controller) handleEvent(event engine.Event) {
	switch e := event.(type) {
	case engine.BufferingEvent:
		c.mu.Lock()
		c.buffering = e.Buffering
		c.mu.Unlock()
	case engine.ErrorEvent:
		c.handleError(e.Err)
	case engine.PlayEvent:
		if err := c.lock.start(); err != nil {
			log.Warnf("wake lock: %v", err)
		}
	case engine.PauseEvent:
		c.lock.stop()
	case engine.EndedEvent:
		c.lock.stop()
		c.mu.Lock()
		callback := c.OnEnded
		c.mu.Unlock()
		if callback != nil {
			callback()
		}
	case engine.AdaptationEvent:
		c.agg.UpdateQuality(e.Track)
	case engine.VariantChangedEvent:
		c.agg.UpdateQuality(e.Track)
	case engine.TextVisibilityEvent:
		c.mu.Lock()
		c.textVisible = e.Visible
		c.mu.Unlock()
	case engine.TimeUpdateEvent:
		c.tick(e.Time)
	}
}

// tick runs the per-position work: sponsor skips and stats refresh.
func (c *Controller) tick(currentTime float64) {
	c.mu.Lock()
	ready := c.state == StateReady
	c.mu.Unlock()
	if !ready {
		return
	}

	if c.skipper != nil {
		if newTime, ok := c.skipper.Check(currentTime, c.eng.SeekRange().End, c.eng.Ended()); ok {
			c.eng.SeekTo(newTime)
		}
	}

	c.agg.UpdateEngine(c.eng.Stats(), c.eng.BufferedInfo(), c.eng.SeekRange())
	c.agg.SetVolume(c.eng.Volume())
}

// Stats returns the current statistics snapshot.
func (c *Controller) Stats() stats.Snapshot {
	return c.agg.Snapshot()
}

// Popup returns the active value-change popup, if one is visible.
func (c *Controller) Popup() (ValueChange, bool) {
	return c.popup.get()
}

// Notices returns the visible skipped-segment notices.
func (c *Controller) Notices() []sponsor.Notice {
	if c.skipper == nil {
		return nil
	}
	return c.skipper.Notices()
}

// Buffering reports whether the engine is stalled filling its buffer.
func (c *Controller) Buffering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffering
}

// Live reports whether the loaded source is a live stream.
func (c *Controller) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// ActiveLegacyFormat returns the playing legacy format, if the session is in
// legacy mode.
func (c *Controller) ActiveLegacyFormat() (source.LegacyFormat, bool) {
	return c.activeLegacyFormat().Get()
}

func (c *Controller) activeLegacyFormat() mo.Option[source.LegacyFormat] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLegacy
}

func activeVariant(variants []engine.VariantTrack) (engine.VariantTrack, bool) {
	for _, t := range variants {
		if t.Active {
			return t, true
		}
	}
	return engine.VariantTrack{}, false
}

func variantsWithLabel(variants []engine.VariantTrack, label string) []engine.VariantTrack {
	var out []engine.VariantTrack
	for _, t := range variants {
		if t.Label == label {
			out = append(out, t)
		}
	}
	return out
}

func mainRoleVariants(variants []engine.VariantTrack) []engine.VariantTrack {
	var out []engine.VariantTrack
	for _, t := range variants {
		if t.HasAudioRole(quality.MainAudioRole) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return variants
	}
	return out
}

func hasMultipleAudioTracks(variants []engine.VariantTrack) bool {
	labels := make(map[string]bool)
	for _, t := range variants {
		if t.Label != "" {
			labels[t.Label] = true
		}
	}
	return len(labels) > 1
}

func smallerDimension(width, height int) int {
	if height > width {
		return width
	}
	return height
}
