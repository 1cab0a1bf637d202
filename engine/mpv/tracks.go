package mpv

import (
	"encoding/json"
	"fmt"
)

// mpvTrack is one entry of mpv's track-list property.
type mpvTrack struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	Selected bool    `json:"selected"`
	Codec    string  `json:"codec"`
	Width    int     `json:"demux-w"`
	Height   int     `json:"demux-h"`
	FPS      float64 `json:"demux-fps"`
	Bitrate  int     `json:"demux-bitrate"`
	Lang     string  `json:"lang"`
	Title    string  `json:"title"`
}

// trackList fetches and decodes mpv's track list. The IPC layer hands the
// property back as decoded JSON, so it round-trips through json to land in
// typed structs.
func (e *Engine) trackList() ([]mpvTrack, error) {
	data, err := e.command("get_property", "track-list")
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("track-list: %w", err)
	}

	var tracks []mpvTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("track-list: %w", err)
	}
	return tracks, nil
}
