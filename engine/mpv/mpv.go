package mpv

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/key"
	"github.com/tubeplay-cli/tubeplay/log"
	"github.com/tubeplay-cli/tubeplay/util"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
)

// Engine drives one mpv process through its JSON-IPC socket and adapts it to
// the engine interface the session controller consumes.
type Engine struct {
	title string

	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	ipcMu      sync.Mutex

	listener *listener
	events   chan engine.Event

	mu     sync.Mutex
	cfg    engine.Config
	loaded bool
}

// New creates an mpv engine instance. The process starts on the first Load.
// The title is forced onto the mpv window for every loaded source.
func New(title string) *Engine {
	e := &Engine{
		title:  title,
		events: make(chan engine.Event, 64),
	}
	e.exited = make(chan struct{})
	close(e.exited)
	return e
}

// Load starts playback of the given URL at startTime, spawning the mpv
// process on first use and reusing it afterwards.
func (e *Engine) Load(ctx context.Context, uri string, startTime float64, _ string) error {
	safeURL, err := sanitizeMediaTarget(uri)
	if err != nil {
		return &engine.Error{Category: engine.CategoryManifest, Message: "invalid media target", Cause: err}
	}

	e.emit(engine.LoadingEvent{})

	if !e.running() {
		if err := e.start(ctx, safeURL, startTime); err != nil {
			return err
		}
	} else {
		opts := fmt.Sprintf("start=%f", startTime)
		if e.Configuration().DisableVideo {
			opts += ",vid=no"
		}
		if _, err := e.command("loadfile", safeURL, "replace", opts); err != nil {
			return &engine.Error{Category: engine.CategoryNetwork, Message: "load", Cause: err}
		}
	}

	e.mu.Lock()
	e.loaded = true
	e.mu.Unlock()

	e.emit(engine.LoadedEvent{})
	return nil
}

// start spawns the mpv process and waits for its IPC socket.
func (e *Engine) start(ctx context.Context, target string, startTime float64) error {
	if e.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		e.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("tubeplay-%x.sock", randomBytes))
	}

	safeTitle := sanitizeTitle(e.title)

	// Pass only the socket, title and target. No --vo, --profile or
	// --hwdec: the user's mpv.conf stays in charge.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", e.socketPath),
		fmt.Sprintf("--force-media-title=%s", safeTitle),
		fmt.Sprintf("--title=%s", safeTitle),
		"--force-window=yes",
		"--idle=yes",
		fmt.Sprintf("--start=%f", startTime),
	}

	if e.Configuration().DisableVideo {
		args = append(args, "--vid=no")
	}

	args = append(args, target)

	e.cmd = exec.Command("mpv", args...)
	e.cmd.SysProcAttr = sysProcAttr()
	e.cmd.Stdout = nil
	e.cmd.Stderr = nil
	e.cmd.Stdin = nil

	if err := e.cmd.Start(); err != nil {
		return &engine.Error{Category: engine.CategoryMedia, Message: "start mpv", Cause: err}
	}

	e.exited = make(chan struct{})
	go func(cmd *exec.Cmd, exited chan struct{}) {
		_ = cmd.Wait()
		close(exited)
	}(e.cmd, e.exited)

	if err := e.waitForSocket(ctx); err != nil {
		select {
		case <-e.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = e.cmd.Process.Kill()
		}
		return &engine.Error{Category: engine.CategoryMedia, Message: "mpv socket not ready", Cause: err}
	}

	e.listener = newListener(e)
	if err := e.listener.start(); err != nil {
		return &engine.Error{Category: engine.CategoryMedia, Message: "event listener", Cause: err}
	}

	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (e *Engine) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", e.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", e.socketPath, socketWaitRetries)
}

func (e *Engine) running() bool {
	select {
	case <-e.exited:
		return false
	default:
		return true
	}
}

func (e *Engine) emit(ev engine.Event) {
	select {
	case e.events <- ev:
	default:
		// A stalled consumer must not block the IPC loop.
	}
}

// Unload detaches the current source, keeping the process around for the
// next Load.
func (e *Engine) Unload(context.Context) error {
	e.mu.Lock()
	wasLoaded := e.loaded
	e.loaded = false
	e.mu.Unlock()

	if !wasLoaded || !e.running() {
		return nil
	}
	_, err := e.command("stop")
	return err
}

// Configure applies per-load options. Takes effect on the next Load.
func (e *Engine) Configure(cfg engine.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Configuration returns the currently applied options.
func (e *Engine) Configuration() engine.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Events returns the typed event stream for this engine instance.
func (e *Engine) Events() <-chan engine.Event {
	return e.events
}

// SeekRange reports the seekable window. Live streams without a known
// duration collapse to the current demuxer window.
func (e *Engine) SeekRange() engine.SeekRange {
	duration, err := e.getFloat("duration")
	if err != nil || duration <= 0 {
		cachedEnd, _ := e.getFloat("demuxer-cache-time")
		pos, _ := e.getFloat("time-pos")
		return engine.SeekRange{Start: pos, End: util.Max(cachedEnd, pos)}
	}
	return engine.SeekRange{Start: 0, End: duration}
}

// IsLive reports whether the loaded source has no finite duration.
func (e *Engine) IsLive() bool {
	duration, err := e.getFloat("duration")
	return err != nil || duration <= 0
}

// GoToLive seeks to the live edge.
func (e *Engine) GoToLive() {
	_, _ = e.command("seek", 100, "absolute-percent")
}

// VariantTracks maps mpv's track list onto variant tracks. mpv exposes one
// decoded stream per track rather than an ABR ladder, so each video track
// becomes one variant carrying the selected audio track's attributes.
func (e *Engine) VariantTracks() []engine.VariantTrack {
	tracks, err := e.trackList()
	if err != nil {
		return nil
	}

	var audio mpvTrack
	for _, t := range tracks {
		if t.Type == "audio" && t.Selected {
			audio = t
		}
	}

	var variants []engine.VariantTrack
	for _, t := range tracks {
		if t.Type != "video" {
			continue
		}
		variants = append(variants, engine.VariantTrack{
			ID:              fmt.Sprintf("v%d", t.ID),
			Active:          t.Selected,
			Width:           t.Width,
			Height:          t.Height,
			FrameRate:       t.FPS,
			Bandwidth:       t.Bitrate + audio.Bitrate,
			AudioBandwidth:  audio.Bitrate,
			Label:           audio.Title,
			AudioCodec:      audio.Codec,
			VideoCodec:      t.Codec,
			OriginalAudioID: fmt.Sprintf("a%d", audio.ID),
			OriginalVideoID: fmt.Sprintf("v%d", t.ID),
		})
	}
	return variants
}

// SelectVariant pins playback to the identified video track.
func (e *Engine) SelectVariant(id string) {
	var trackID int
	if _, err := fmt.Sscanf(id, "v%d", &trackID); err != nil {
		return
	}
	_ = e.set("vid", trackID)

	if track, ok := e.activeVideoTrack(); ok {
		e.emit(engine.VariantChangedEvent{Track: track})
	}
}

// SelectVariantsByLabel switches to the audio track carrying the label.
func (e *Engine) SelectVariantsByLabel(label string) {
	tracks, err := e.trackList()
	if err != nil {
		return
	}
	for _, t := range tracks {
		if t.Type == "audio" && (t.Title == label || t.Lang == label) {
			_ = e.set("aid", t.ID)
			return
		}
	}
}

func (e *Engine) activeVideoTrack() (engine.VariantTrack, bool) {
	for _, t := range e.VariantTracks() {
		if t.Active {
			return t, true
		}
	}
	return engine.VariantTrack{}, false
}

// AddTextTrack registers an external caption track with mpv.
func (e *Engine) AddTextTrack(_ context.Context, uri, language, _, _, label string) error {
	if _, err := e.command("sub-add", uri, "auto", label, language); err != nil {
		return &engine.Error{Category: engine.CategoryText, Message: "sub-add", Cause: err}
	}
	return nil
}

// TextTracks returns mpv's subtitle tracks.
func (e *Engine) TextTracks() []engine.TextTrack {
	tracks, err := e.trackList()
	if err != nil {
		return nil
	}

	var out []engine.TextTrack
	for _, t := range tracks {
		if t.Type != "sub" {
			continue
		}
		out = append(out, engine.TextTrack{
			ID:       fmt.Sprintf("s%d", t.ID),
			Language: t.Lang,
			Label:    t.Title,
			Active:   t.Selected,
		})
	}
	return out
}

// SelectTextTrack activates the identified caption track.
func (e *Engine) SelectTextTrack(id string) {
	var trackID int
	if _, err := fmt.Sscanf(id, "s%d", &trackID); err != nil {
		return
	}
	_ = e.set("sid", trackID)
}

// SetTextVisibility toggles mpv's subtitle rendering.
func (e *Engine) SetTextVisibility(visible bool) error {
	if err := e.set("sub-visibility", visible); err != nil {
		return &engine.Error{Category: engine.CategoryText, Message: "sub-visibility", Cause: err}
	}
	return nil
}

// IsTextVisible reports whether subtitle rendering is on.
func (e *Engine) IsTextVisible() bool {
	visible, err := e.getBool("sub-visibility")
	return err == nil && visible
}

// BufferedInfo reports the demuxer cache as one buffered interval ahead of
// the playhead.
func (e *Engine) BufferedInfo() engine.BufferedInfo {
	pos, err := e.getFloat("time-pos")
	if err != nil {
		return engine.BufferedInfo{}
	}
	cached, err := e.getFloat("demuxer-cache-time")
	if err != nil || cached <= pos {
		return engine.BufferedInfo{}
	}
	return engine.BufferedInfo{Total: []engine.BufferedRange{{Start: pos, End: cached}}}
}

// Stats retrieves mpv's playback counters.
func (e *Engine) Stats() engine.Stats {
	var s engine.Stats

	if v, err := e.getFloat("video-bitrate"); err == nil {
		s.EstimatedBandwidth = v
	}
	if a, err := e.getFloat("audio-bitrate"); err == nil {
		s.EstimatedBandwidth += a
	}
	if n, err := e.getFloat("estimated-frame-number"); err == nil {
		s.DecodedFrames = int(n)
	}
	if n, err := e.getFloat("frame-drop-count"); err == nil {
		s.DroppedFrames = int(n)
	}
	if w, err := e.getFloat("width"); err == nil {
		s.Width = int(w)
	}
	if h, err := e.getFloat("height"); err == nil {
		s.Height = int(h)
	}

	return s
}

// Play resumes playback.
func (e *Engine) Play() error {
	return e.set("pause", false)
}

// Pause suspends playback.
func (e *Engine) Pause() error {
	return e.set("pause", true)
}

// Paused reports the current suspension state.
func (e *Engine) Paused() bool {
	paused, err := e.getBool("pause")
	return err == nil && paused
}

// Ended reports whether playback ran past the end of the source.
func (e *Engine) Ended() bool {
	ended, err := e.getBool("eof-reached")
	return err == nil && ended
}

// CurrentTime retrieves the current playback position in seconds.
func (e *Engine) CurrentTime() float64 {
	pos, _ := e.getFloat("time-pos")
	return pos
}

// SeekTo transitions playback to an absolute position in seconds.
func (e *Engine) SeekTo(seconds float64) {
	_, _ = e.command("seek", seconds, "absolute")
}

// Duration retrieves the total length of the loaded source.
func (e *Engine) Duration() float64 {
	duration, _ := e.getFloat("duration")
	return duration
}

// PlaybackRate retrieves the current playback rate multiplier.
func (e *Engine) PlaybackRate() float64 {
	rate, err := e.getFloat("speed")
	if err != nil || rate <= 0 {
		return 1
	}
	return rate
}

// SetPlaybackRate updates the playback rate multiplier.
func (e *Engine) SetPlaybackRate(rate float64) {
	_ = e.set("speed", rate)
}

// Volume retrieves the current volume in [0, 1]. mpv works in percent.
func (e *Engine) Volume() float64 {
	volume, err := e.getFloat("volume")
	if err != nil {
		return 0
	}
	return util.Clamp(volume/100, 0, 1)
}

// SetVolume updates the volume, clamped to [0, 1].
func (e *Engine) SetVolume(volume float64) {
	_ = e.set("volume", util.Clamp(volume, 0, 1)*100)
}

// Muted reports the mute state.
func (e *Engine) Muted() bool {
	muted, err := e.getBool("mute")
	return err == nil && muted
}

// SetMuted updates the mute state.
func (e *Engine) SetMuted(muted bool) {
	_ = e.set("mute", muted)
}

// Destroy shuts the mpv process down and closes the event channel.
func (e *Engine) Destroy(context.Context) error {
	if e.listener != nil {
		e.listener.stop()
		e.listener = nil
	}

	if e.socketPath != "" && e.running() {
		_, _ = e.command("quit")

		select {
		case <-e.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(e.cmd)
		}
	}

	if e.socketPath != "" {
		_ = os.Remove(e.socketPath)
	}

	close(e.events)
	return nil
}

// Screenshot writes the current video frame into dir and returns the file
// path. The format follows the configured screenshot encoding.
func (e *Engine) Screenshot(dir, title string) (string, error) {
	format := viper.GetString(key.ScreenshotFormat)
	if format == "" {
		format = "png"
	}

	name := fmt.Sprintf("%s-%d.%s", util.SanitizeFilename(title), time.Now().Unix(), format)
	path := filepath.Join(dir, name)

	if _, err := e.command("screenshot-to-file", path, "video"); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// sanitizeMediaTarget validates that a target is safe to hand to mpv,
// rejecting anything that could be parsed as a flag.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
