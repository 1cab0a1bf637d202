// Package subtitle parses uploaded caption files into timed cues and resolves
// the active cue for a playback position.
//
// Two input formats are supported: SRT (line-numbered blocks, comma decimal
// separator) and WebVTT (dot separator, header line). SRT input is normalized
// to VTT form before parsing, so a single cue block parser serves both.
package subtitle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cue is one locally parsed subtitle entry. Custom cues are never forwarded
// to the playback engine; they are rendered by the caller.
type Cue struct {
	StartTime float64
	EndTime   float64
	Text      string
}

var (
	// srtTimestamp matches SRT timestamps with their comma decimal separator.
	srtTimestamp = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}),(\d{3})`)
	// cueIndexLine matches the numeric cue index lines SRT puts above each block.
	cueIndexLine = regexp.MustCompile(`(?m)^\d+[ \t]*$`)
	// blankRun matches runs of two or more newlines.
	blankRun = regexp.MustCompile(`\n\n+`)
	// cueTiming matches a "start --> end" pair in HH:MM:SS.mmm or MM:SS.mmm form.
	cueTiming = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3}|\d{2}:\d{2}\.\d{3}) --> (\d{2}:\d{2}:\d{2}\.\d{3}|\d{2}:\d{2}\.\d{3})`)
)

// ErrNoCues is returned when a file yields no parseable cue blocks at all.
var ErrNoCues = errors.New("subtitle: no valid cues found")

// Parse converts the contents of an uploaded subtitle file into cues.
// fileExtension selects the input format ("srt" or "vtt", case-insensitive).
// Malformed cue blocks are dropped silently; Parse fails only when nothing
// parseable remains.
func Parse(fileContents, fileExtension string) ([]Cue, error) {
	content := strings.ReplaceAll(fileContents, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	switch strings.ToLower(strings.TrimPrefix(fileExtension, ".")) {
	case "srt":
		content = convertSrtToVtt(content)
	case "vtt":
		// Already in VTT form.
	default:
		return nil, fmt.Errorf("subtitle: unsupported file extension %q", fileExtension)
	}

	cues := parseVttCues(content)
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	return cues, nil
}

// convertSrtToVtt normalizes SRT content into VTT form: comma decimal
// separators become dots, a synthetic header is prepended, numeric cue index
// lines are stripped and blank-line runs collapse to one blank line.
func convertSrtToVtt(srt string) string {
	vtt := srtTimestamp.ReplaceAllString(srt, "$1.$2")
	vtt = "WEBVTT\n\n" + vtt
	vtt = cueIndexLine.ReplaceAllString(vtt, "")
	vtt = blankRun.ReplaceAllString(vtt, "\n\n")
	return vtt
}

// parseVttCues splits VTT content on blank-line boundaries, discards the
// header block and converts each remaining block into a cue. Blocks without
// a timing line or with fewer than two lines are dropped.
func parseVttCues(vtt string) []Cue {
	blocks := strings.Split(vtt, "\n\n")
	if len(blocks) < 2 {
		return nil
	}

	var cues []Cue
	for _, block := range blocks[1:] {
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}

		timing := cueTiming.FindStringSubmatch(lines[0])
		if timing == nil {
			continue
		}

		cues = append(cues, Cue{
			StartTime: toSeconds(timing[1]),
			EndTime:   toSeconds(timing[2]),
			Text:      strings.Join(lines[1:], " "),
		})
	}
	return cues
}

// toSeconds converts a normalized timestamp into seconds. A two-field time is
// minutes:seconds, a three-field time is hours:minutes:seconds.
func toSeconds(timestamp string) float64 {
	parts := strings.Split(timestamp, ":")

	var seconds float64
	if len(parts) == 3 {
		seconds += parseFloat(parts[0]) * 3600
		seconds += parseFloat(parts[1]) * 60
		seconds += parseFloat(parts[2])
	} else {
		seconds += parseFloat(parts[0]) * 60
		seconds += parseFloat(parts[1])
	}
	return seconds
}

func parseFloat(s string) float64 {
	value, _ := strconv.ParseFloat(s, 64)
	return value
}

// ActiveCue returns the cue whose inclusive [start, end] range contains
// currentTime. When multiple cues match the first one found wins; when none
// match the second return value is false and any displayed text must be
// cleared by the caller.
func ActiveCue(cues []Cue, currentTime float64) (Cue, bool) {
	for _, cue := range cues {
		if currentTime >= cue.StartTime && currentTime <= cue.EndTime {
			return cue, true
		}
	}
	return Cue{}, false
}
