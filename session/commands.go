package session

import (
	"fmt"
	"math"

	"github.com/tubeplay-cli/tubeplay/icon"
	"github.com/tubeplay-cli/tubeplay/input"
	"github.com/tubeplay-cli/tubeplay/log"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/subtitle"
)

// fineRateStep is the playback rate adjustment for scroll gestures.
const fineRateStep = 0.05

// volumeStep is the volume adjustment for keys and scroll gestures.
const volumeStep = 0.05

// InputState builds the guard snapshot the input dispatcher consults.
func (c *Controller) InputState() input.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return input.State{
		Loaded:            c.state == StateReady,
		Seekable:          c.seekableLocked(),
		AudioOnly:         c.kind == source.AudioOnly,
		HasCaptions:       len(c.eng.TextTracks()) > 0,
		HasCustomCues:     len(c.customCues) > 0,
		ChapterCount:      len(c.src.Chapters),
		ChapterIndex:      c.chapterIndexLocked(),
		FullWindow:        c.fullWindow,
		TheatrePossible:   c.opts.TheatrePossible,
		ScreenshotEnabled: c.opts.ScreenshotEnabled && c.OnScreenshot != nil,
	}
}

// Execute runs one dispatched playback command.
func (c *Controller) Execute(action input.Action) {
	switch action.Command {
	case input.CommandTogglePlay:
		c.TogglePlay()
	case input.CommandSeekBack:
		c.SeekBy(-c.skipDistance())
	case input.CommandSeekForward:
		c.SeekBy(c.skipDistance())
	case input.CommandSeekBackLarge:
		c.SeekBy(-c.skipDistance() * 2)
	case input.CommandSeekForwardLarge:
		c.SeekBy(c.skipDistance() * 2)
	case input.CommandSeekPercent:
		c.SeekToFraction(action.Percent)
	case input.CommandChapterPrevious:
		c.JumpToChapter(c.ChapterIndex() - 1)
	case input.CommandChapterNext:
		c.JumpToChapter(c.ChapterIndex() + 1)
	case input.CommandFrameBack:
		c.FrameStep(-1)
	case input.CommandFrameForward:
		c.FrameStep(1)
	case input.CommandRateDown:
		c.ChangeRate(-c.rateInterval())
	case input.CommandRateUp:
		c.ChangeRate(c.rateInterval())
	case input.CommandRateDownFine:
		c.ChangeRate(-fineRateStep)
	case input.CommandRateUpFine:
		c.ChangeRate(fineRateStep)
	case input.CommandVolumeDown:
		c.ChangeVolume(-volumeStep)
	case input.CommandVolumeUp:
		c.ChangeVolume(volumeStep)
	case input.CommandToggleMute:
		c.ToggleMute()
	case input.CommandToggleCaptions:
		c.ToggleCaptions()
	case input.CommandToggleCustomSubtitles:
		c.ToggleCustomSubtitles()
	case input.CommandToggleFullscreen:
		c.toggleFlag(&c.fullscreen)
	case input.CommandToggleFullWindow:
		c.toggleFlag(&c.fullWindow)
	case input.CommandExitFullWindow:
		c.setFlag(&c.fullWindow, false)
	case input.CommandExitAllModes:
		c.setFlag(&c.fullscreen, false)
		c.setFlag(&c.fullWindow, false)
	case input.CommandToggleTheatre:
		c.toggleFlag(&c.theatre)
	case input.CommandTogglePiP:
		c.toggleFlag(&c.pip)
	case input.CommandToggleStats:
		c.toggleFlag(&c.statsVisible)
	case input.CommandScreenshot:
		c.Screenshot()
	}
}

// TogglePlay flips between playing and paused.
func (c *Controller) TogglePlay() {
	var err error
	if c.eng.Paused() {
		err = c.eng.Play()
	} else {
		err = c.eng.Pause()
	}
	if err != nil {
		c.handleError(err)
	}
}

// Seekable reports whether seeking is currently possible: a ready session,
// a seekable source and a non-empty seek range.
func (c *Controller) Seekable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekableLocked()
}

func (c *Controller) seekableLocked() bool {
	if c.state != StateReady || !c.src.Seekable {
		return false
	}
	return c.eng.SeekRange().Span() > 0
}

// SeekBy moves playback by a relative distance, scaled by the playback rate
// and clamped to the seekable range. Seeking past the live edge of a live
// stream snaps to live instead.
func (c *Controller) SeekBy(seconds float64) {
	if !c.Seekable() {
		return
	}

	seekRange := c.eng.SeekRange()
	newTime := c.eng.CurrentTime() + seconds*c.eng.PlaybackRate()
	switch {
	case newTime < seekRange.Start:
		c.eng.SeekTo(seekRange.Start)
	case newTime > seekRange.End:
		if c.Live() {
			c.eng.GoToLive()
		} else {
			c.eng.SeekTo(seekRange.End)
		}
	default:
		c.eng.SeekTo(newTime)
	}
}

// SeekToFraction jumps to a fraction of the seekable range.
func (c *Controller) SeekToFraction(fraction float64) {
	if !c.Seekable() {
		return
	}
	seekRange := c.eng.SeekRange()
	c.eng.SeekTo(seekRange.Start + seekRange.Span()*fraction)
}

// ChapterIndex returns the index of the chapter containing the playhead.
func (c *Controller) ChapterIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chapterIndexLocked()
}

func (c *Controller) chapterIndexLocked() int {
	if len(c.src.Chapters) == 0 {
		return -1
	}
	return source.ChapterIndexAt(c.src.Chapters, c.eng.CurrentTime())
}

// JumpToChapter seeks to the start of the given chapter.
func (c *Controller) JumpToChapter(index int) {
	if index < 0 || index >= len(c.src.Chapters) {
		return
	}
	c.eng.SeekTo(c.src.Chapters[index].StartSeconds)
}

// FrameStep pauses and moves one frame in the given direction, using the
// active representation's frame rate.
func (c *Controller) FrameStep(step int) {
	c.mu.Lock()
	audio := c.kind == source.AudioOnly
	c.mu.Unlock()
	if audio || !c.Seekable() {
		return
	}

	_ = c.eng.Pause()

	var fps float64
	if format, ok := c.ActiveLegacyFormat(); ok {
		fps = format.FPS
	} else if track, ok := activeVariant(c.eng.VariantTracks()); ok {
		fps = track.FrameRate
	}
	if fps <= 0 {
		return
	}

	seekRange := c.eng.SeekRange()
	newTime := c.eng.CurrentTime() + float64(step)/fps
	if newTime < seekRange.Start {
		newTime = seekRange.Start
	} else if newTime > seekRange.End {
		newTime = seekRange.End
	}
	c.eng.SeekTo(newTime)
}

// ChangeVolume adjusts the volume by a signed step, clamps it to [0, 1] and
// shows the value-change popup with a direction icon.
func (c *Controller) ChangeVolume(step float64) {
	oldValue := c.eng.Volume()
	newValue := oldValue + step
	if newValue < 0 {
		newValue = 0
	} else if newValue > 1 {
		newValue = 1
	}
	c.eng.SetVolume(newValue)
	c.agg.SetVolume(newValue)

	var messageIcon icon.Icon
	switch {
	case newValue <= 0:
		messageIcon = icon.VolumeMute
	case newValue < oldValue:
		messageIcon = icon.VolumeLow
	default:
		messageIcon = icon.VolumeHigh
	}
	c.popup.show(fmt.Sprintf("%d%%", int(math.Round(newValue*100))), messageIcon, true)
}

// ToggleMute flips the mute state and shows the resulting volume.
func (c *Controller) ToggleMute() {
	muted := !c.eng.Muted()
	c.eng.SetMuted(muted)

	if muted {
		c.popup.show("0%", icon.VolumeMute, true)
	} else {
		message := fmt.Sprintf("%d%%", int(math.Round(c.eng.Volume()*100)))
		c.popup.show(message, icon.VolumeHigh, true)
	}
}

// ChangeRate steps the playback rate. Steps that would land at or below the
// rate floor, or above the configured maximum, are ignored.
func (c *Controller) ChangeRate(step float64) {
	newRate := math.Round((c.eng.PlaybackRate()+step)*100) / 100
	if newRate <= rateFloor || newRate > c.rateMax() {
		return
	}
	c.eng.SetPlaybackRate(newRate)
	c.popup.show(fmt.Sprintf("%.2fx", newRate), 0, false)
}

// Rates returns the selectable playback rates, fastest first, built from the
// configured interval and maximum.
func (c *Controller) Rates() []float64 {
	interval := c.rateInterval()
	maximum := c.rateMax()

	var rates []float64
	for r := interval; r <= maximum+1e-9; r += interval {
		r = math.Round(r*100) / 100
		rates = append([]float64{r}, rates...)
	}
	return rates
}

// ToggleCaptions flips native caption visibility, when caption tracks exist.
func (c *Controller) ToggleCaptions() {
	if len(c.eng.TextTracks()) == 0 {
		return
	}
	if err := c.eng.SetTextVisibility(!c.eng.IsTextVisible()); err != nil {
		c.handleError(err)
	}
}

// SetCustomCues installs locally parsed subtitle cues and enables them.
// Native captions are hidden so the two never render on top of each other.
func (c *Controller) SetCustomCues(cues []subtitle.Cue) {
	c.mu.Lock()
	c.customCues = cues
	c.customEnabled = len(cues) > 0
	enabled := c.customEnabled
	c.mu.Unlock()

	if enabled {
		c.hideNativeCaptions()
	}
}

// ToggleCustomSubtitles flips local cue display and returns the new state.
// Enabling hides native captions, see SetCustomCues.
func (c *Controller) ToggleCustomSubtitles() bool {
	c.mu.Lock()
	if len(c.customCues) == 0 {
		c.mu.Unlock()
		return false
	}
	c.customEnabled = !c.customEnabled
	enabled := c.customEnabled
	c.mu.Unlock()

	if enabled {
		c.hideNativeCaptions()
	}
	return enabled
}

func (c *Controller) hideNativeCaptions() {
	if !c.eng.IsTextVisible() {
		return
	}
	if err := c.eng.SetTextVisibility(false); err != nil {
		c.handleError(err)
	}
}

// ActiveCustomCue returns the local cue covering the playhead, when local
// cues are installed and enabled.
func (c *Controller) ActiveCustomCue() (subtitle.Cue, bool) {
	c.mu.Lock()
	cues := c.customCues
	enabled := c.customEnabled
	c.mu.Unlock()

	if !enabled || len(cues) == 0 {
		return subtitle.Cue{}, false
	}
	return subtitle.ActiveCue(cues, c.eng.CurrentTime())
}

// Screenshot captures the current frame through the presentation layer.
func (c *Controller) Screenshot() {
	c.mu.Lock()
	capture := c.OnScreenshot
	c.mu.Unlock()
	if capture == nil {
		return
	}
	if err := capture(); err != nil {
		log.Errorf("screenshot: %v", err)
		c.popup.show("screenshot failed", icon.Fail, true)
		return
	}
	c.popup.show("screenshot saved", icon.Camera, true)
}

// StatsVisible reports whether the stats overlay is toggled on.
func (c *Controller) StatsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsVisible
}

// FullWindow reports whether full-window mode is active.
func (c *Controller) FullWindow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullWindow
}

// Theatre reports whether theatre mode is active.
func (c *Controller) Theatre() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theatre
}

func (c *Controller) toggleFlag(flag *bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*flag = !*flag
}

func (c *Controller) setFlag(flag *bool, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*flag = value
}

func (c *Controller) skipDistance() float64 {
	if c.opts.SkipInterval > 0 {
		return c.opts.SkipInterval
	}
	return 5
}

func (c *Controller) rateInterval() float64 {
	if c.opts.RateInterval > 0 {
		return c.opts.RateInterval
	}
	return 0.25
}

func (c *Controller) rateMax() float64 {
	if c.opts.RateMax > 0 {
		return c.opts.RateMax
	}
	return 3
}
