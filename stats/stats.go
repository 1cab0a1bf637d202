// Package stats aggregates the technical playback statistics shown by the
// stats overlay: codec identities, resolution, bitrate, estimated bandwidth
// and buffer health.
package stats

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/util"
)

// legacyCodecs extracts the video and audio codec identifiers from a legacy
// format's full mime type, e.g. `video/mp4; codecs="avc1.64001F, mp4a.40.2"`.
var legacyCodecs = regexp.MustCompile(`codecs="(?P<videoCodec>.+), ?(?P<audioCodec>.+)"`)

// Codecs identifies the active audio and video streams.
type Codecs struct {
	AudioItag  string
	AudioCodec string
	VideoItag  string
	VideoCodec string
}

// Resolution is the active representation's picture geometry.
type Resolution struct {
	Width     int
	Height    int
	FrameRate float64
}

// Frames counts decoded and dropped video frames since load.
type Frames struct {
	Dropped int
	Total   int
}

// Snapshot is one consistent reading of every tracked statistic. Rates are
// kilobits per second, buffered is a percentage of the seekable span.
type Snapshot struct {
	VolumePercent   float64
	BitrateKbps     float64
	BandwidthKbps   float64
	BufferedPercent float64
	Codecs          Codecs
	Resolution      Resolution
	Frames          Frames
}

// Aggregator folds engine readings and representation changes into a
// snapshot. Safe for concurrent use; the playback loop writes while the
// overlay reads.
type Aggregator struct {
	kind source.Kind

	mu   sync.Mutex
	snap Snapshot
}

// New builds an aggregator for a session of the given source kind. The kind
// determines which statistics apply: legacy sources have no bandwidth
// estimate, audio-only sources have no frame counters.
func New(kind source.Kind) *Aggregator {
	return &Aggregator{kind: kind}
}

// SetVolume records the current volume as a percentage.
func (a *Aggregator) SetVolume(volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.VolumePercent = volume * 100
}

// UpdateQuality records the newly active adaptive representation. Muxed
// representations carry both codecs comma-joined in the video codec field
// and have no per-stream identifiers. Ignored for legacy sessions.
func (a *Aggregator) UpdateQuality(track engine.VariantTrack) {
	if a.kind == source.Legacy {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap.BitrateKbps = float64(track.Bandwidth) / 1000

	if strings.Contains(track.VideoCodec, ",") {
		parts := strings.SplitN(track.VideoCodec, ",", 2)
		a.snap.Codecs = Codecs{
			AudioCodec: strings.TrimSpace(parts[0]),
			VideoCodec: strings.TrimSpace(parts[1]),
		}
		a.snap.Resolution = Resolution{
			Width:     track.Width,
			Height:    track.Height,
			FrameRate: track.FrameRate,
		}
		return
	}

	audioItag, _, _ := strings.Cut(track.OriginalAudioID, "-")
	a.snap.Codecs.AudioItag = audioItag
	a.snap.Codecs.AudioCodec = track.AudioCodec
	if a.kind == source.Adaptive {
		a.snap.Codecs.VideoItag = track.OriginalVideoID
		a.snap.Codecs.VideoCodec = track.VideoCodec
		a.snap.Resolution = Resolution{
			Width:     track.Width,
			Height:    track.Height,
			FrameRate: track.FrameRate,
		}
	}
}

// UpdateLegacyQuality records the active legacy format. Both streams share
// the format's itag; the codecs come from its mime type. Ignored for
// adaptive sessions.
func (a *Aggregator) UpdateLegacyQuality(format source.LegacyFormat) error {
	if a.kind != source.Legacy {
		return nil
	}

	groups := util.ReGroups(legacyCodecs, format.MimeType)
	if len(groups) == 0 {
		return fmt.Errorf("no codecs in mime type %q", format.MimeType)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap.Codecs = Codecs{
		AudioItag:  format.Itag,
		AudioCodec: groups["audioCodec"],
		VideoItag:  format.Itag,
		VideoCodec: groups["videoCodec"],
	}
	a.snap.Resolution = Resolution{
		Width:     format.Width,
		Height:    format.Height,
		FrameRate: format.FPS,
	}
	a.snap.BitrateKbps = float64(format.Bitrate) / 1000
	return nil
}

// UpdateEngine folds in the engine's periodic counters and buffer state.
func (a *Aggregator) UpdateEngine(s engine.Stats, buffered engine.BufferedInfo, seekRange engine.SeekRange) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.kind != source.AudioOnly {
		a.snap.Frames = Frames{
			Dropped: s.DroppedFrames,
			Total:   s.DecodedFrames,
		}
	}
	if a.kind != source.Legacy {
		a.snap.BandwidthKbps = s.EstimatedBandwidth / 1000
	}

	if span := seekRange.Span(); span > 0 {
		a.snap.BufferedPercent = buffered.Seconds() / span * 100
	} else {
		a.snap.BufferedPercent = 0
	}
}

// Snapshot returns the current reading.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}
