// Package source defines the media source data model consumed by a playback session.
package source

import "sort"

// Source describes one playable media item. All fields are supplied fresh at
// load time and discarded on unload; the struct itself is read-only for the
// session that consumes it.
type Source struct {
	Kind     Kind   `json:"kind"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Live     bool   `json:"live,omitempty"`
	Seekable bool   `json:"seekable"`

	// ManifestURI and MimeType locate the adaptive/audio manifest.
	// Unused for legacy sources.
	ManifestURI string `json:"manifest_uri,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`

	// LegacyFormats is the fixed ordered list of discrete quality options.
	// Populated only for legacy sources.
	LegacyFormats []LegacyFormat `json:"legacy_formats,omitempty"`

	Captions []CaptionTrack `json:"captions,omitempty"`
	Chapters []Chapter      `json:"chapters,omitempty"`

	// StartTime is the initial playback position in seconds.
	StartTime float64 `json:"start_time,omitempty"`
}

// LegacyFormat is one discrete pre-muxed quality option of a legacy source.
type LegacyFormat struct {
	URL      string  `json:"url"`
	MimeType string  `json:"mime_type,omitempty"`
	Itag     string  `json:"itag,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Bitrate  int     `json:"bitrate,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
}

// CaptionTrack references an externally hosted subtitle track.
// It is passed through to the playback engine unmodified.
type CaptionTrack struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Label    string `json:"label,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Chapter is a read-only navigation marker supplied by the caller.
type Chapter struct {
	Title        string  `json:"title"`
	StartSeconds float64 `json:"start_seconds"`
}

// SortCaptions orders caption tracks deterministically: the preferred language
// first, then the remaining tracks alphabetically by language and label.
func SortCaptions(captions []CaptionTrack, preferredLanguage string) []CaptionTrack {
	sorted := make([]CaptionTrack, len(captions))
	copy(sorted, captions)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.Language == preferredLanguage) != (b.Language == preferredLanguage) {
			return a.Language == preferredLanguage
		}
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		return a.Label < b.Label
	})

	return sorted
}

// ChapterIndexAt returns the index of the chapter containing the given
// playback time, or -1 when no chapters exist.
func ChapterIndexAt(chapters []Chapter, currentTime float64) int {
	index := -1
	for i, chapter := range chapters {
		if chapter.StartSeconds <= currentTime {
			index = i
		} else {
			break
		}
	}
	if index == -1 && len(chapters) > 0 {
		index = 0
	}
	return index
}
