package history

import (
	"fmt"
	"time"

	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/util"
)

// SavedPlayback represents a single watched video preserved in the user's history.
type SavedPlayback struct {
	VideoID           string  `json:"video_id"`
	Title             string  `json:"title"`
	Kind              string  `json:"kind"`
	PositionSeconds   float64 `json:"position_seconds"`
	DurationSeconds   float64 `json:"duration_seconds"`
	WatchedPercentage float64 `json:"watched_percentage"`
	UpdatedAt         int64   `json:"updated_at"`
}

func (s *SavedPlayback) encode() string {
	return s.VideoID
}

func (s *SavedPlayback) String() string {
	return fmt.Sprintf("%s : %s / %s", s.Title, util.FormatDuration(s.PositionSeconds), util.FormatDuration(s.DurationSeconds))
}

func newSavedPlayback(src source.Source, position, duration float64) *SavedPlayback {
	return &SavedPlayback{
		VideoID:         src.VideoID,
		Title:           src.Title,
		Kind:            src.Kind.String(),
		PositionSeconds: position,
		DurationSeconds: duration,
		UpdatedAt:       time.Now().Unix(),
	}
}
