// Package quality implements deterministic representation selection for a
// playback session.
//
// Selection only runs for explicit (non-auto) targets; with an automatic
// target the engine's own adaptive bitrate logic is authoritative and this
// package is never consulted.
package quality

import (
	"sort"

	"github.com/samber/mo"
	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/source"
)

// MainAudioRole is the role restricting selection when a source carries
// multiple audio tracks and none is explicitly pinned.
const MainAudioRole = "main"

// Context carries the best-effort carry-over state from a previously active
// representation, used when preserving quality across a format switch.
type Context struct {
	// AudioLabel pins selection to variants carrying this audio track label.
	AudioLabel mo.Option[string]

	// AudioBandwidth, when known from a prior representation, narrows the
	// chosen dimension's variants to the one with the numerically closest
	// audio bandwidth.
	AudioBandwidth mo.Option[int]

	// MultipleAudioTracks restricts unpinned selection to the main role.
	MultipleAudioTracks bool
}

// Select picks the best concrete representation for a target pixel dimension.
//
// The target is matched against height, or width for portrait-oriented
// content; orientation is determined from the first representation. An exact
// dimension match wins, otherwise the smallest dimension above the target;
// ties break towards the highest bitrate. When nothing reaches the target the
// highest-bitrate representation is returned.
//
// Select must not be invoked with an empty representation set; doing so is a
// caller error and panics.
func Select(target int, variants []engine.VariantTrack, ctx Context) engine.VariantTrack {
	if len(variants) == 0 {
		panic("quality: Select called with no representations")
	}

	filtered := filterAudio(variants, ctx)
	if len(filtered) == 0 {
		// A pinned label that matches nothing falls back to the full set.
		filtered = variants
	}

	portrait := filtered[0].Height > filtered[0].Width
	dimension := func(t engine.VariantTrack) int {
		if portrait {
			return t.Width
		}
		return t.Height
	}

	var matches []engine.VariantTrack
	for _, t := range filtered {
		if dimension(t) == target {
			matches = append(matches, t)
		}
	}

	if len(matches) == 0 {
		// No exact match: take the smallest dimension above the target.
		best := 0
		for _, t := range filtered {
			d := dimension(t)
			if d <= target {
				continue
			}
			if best == 0 || d < best {
				best = d
			}
		}
		for _, t := range filtered {
			if dimension(t) == best && best != 0 {
				matches = append(matches, t)
			}
		}
	}

	if len(matches) == 0 {
		// Nothing reaches the target. Last resort: ascending bitrate order,
		// highest bitrate wins.
		sorted := make([]engine.VariantTrack, len(filtered))
		copy(sorted, filtered)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Bandwidth < sorted[j].Bandwidth
		})
		matches = sorted[len(sorted)-1:]
	}

	if bandwidth, ok := ctx.AudioBandwidth.Get(); ok {
		return MostSimilarAudioBandwidth(matches, bandwidth)
	}

	return highestBitrate(matches)
}

// SelectLegacy picks the best discrete format from a legacy source's fixed
// list. An exact height match wins, then the largest height above the target,
// then (as a last resort) the list is ordered ascending by bitrate and the
// highest bitrate wins.
func SelectLegacy(target int, formats []source.LegacyFormat) source.LegacyFormat {
	if len(formats) == 0 {
		panic("quality: SelectLegacy called with no formats")
	}

	var matches []source.LegacyFormat
	for _, f := range formats {
		if f.Height == target {
			matches = append(matches, f)
		}
	}

	if len(matches) == 0 {
		best := 0
		for _, f := range formats {
			if f.Height > target && (best == 0 || f.Height < best) {
				best = f.Height
			}
		}
		for _, f := range formats {
			if best != 0 && f.Height == best {
				matches = append(matches, f)
			}
		}
	}

	if len(matches) == 0 {
		sorted := make([]source.LegacyFormat, len(formats))
		copy(sorted, formats)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Bitrate < sorted[j].Bitrate
		})
		return sorted[len(sorted)-1]
	}

	best := matches[0]
	for _, f := range matches[1:] {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

// filterAudio applies the audio track restriction: a pinned label wins,
// otherwise multi-audio sources are restricted to the main role.
func filterAudio(variants []engine.VariantTrack, ctx Context) []engine.VariantTrack {
	if label, ok := ctx.AudioLabel.Get(); ok {
		var out []engine.VariantTrack
		for _, t := range variants {
			if t.Label == label {
				out = append(out, t)
			}
		}
		return out
	}

	if ctx.MultipleAudioTracks {
		var out []engine.VariantTrack
		for _, t := range variants {
			if t.HasAudioRole(MainAudioRole) {
				out = append(out, t)
			}
		}
		return out
	}

	return variants
}

// highestBitrate returns the variant with the maximum combined bandwidth.
func highestBitrate(variants []engine.VariantTrack) engine.VariantTrack {
	best := variants[0]
	for _, t := range variants[1:] {
		if t.Bandwidth > best.Bandwidth {
			best = t
		}
	}
	return best
}

// MostSimilarAudioBandwidth returns the variant whose audio bandwidth is
// numerically closest to the given prior value.
func MostSimilarAudioBandwidth(variants []engine.VariantTrack, bandwidth int) engine.VariantTrack {
	best := variants[0]
	bestDelta := delta(best.AudioBandwidth, bandwidth)
	for _, t := range variants[1:] {
		if d := delta(t.AudioBandwidth, bandwidth); d < bestDelta {
			best = t
			bestDelta = d
		}
	}
	return best
}

// HighestAudioBandwidth returns the variant with the maximum audio bandwidth,
// used for initial audio-only selection with an explicit quality target.
func HighestAudioBandwidth(variants []engine.VariantTrack) engine.VariantTrack {
	if len(variants) == 0 {
		panic("quality: HighestAudioBandwidth called with no representations")
	}
	best := variants[0]
	for _, t := range variants[1:] {
		if t.AudioBandwidth > best.AudioBandwidth {
			best = t
		}
	}
	return best
}

func delta(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
