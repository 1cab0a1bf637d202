package sponsor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/constant"
	"github.com/tubeplay-cli/tubeplay/key"
	"github.com/tubeplay-cli/tubeplay/log"
	"github.com/tubeplay-cli/tubeplay/util"
)

// apiSegment defines the internal structural mapping for segment API responses.
type apiSegment struct {
	Category      string     `json:"category"`
	ActionType    string     `json:"actionType"`
	Segment       [2]float64 `json:"segment"`
	UUID          string     `json:"UUID"`
	VideoDuration float64    `json:"videoDuration"`
}

type apiVideo struct {
	VideoID  string       `json:"videoID"`
	Segments []apiSegment `json:"segments"`
}

// FetchSegments retrieves the labelled segments for a video from the
// SponsorBlock-compatible API, restricted to the given categories. The video
// is looked up by hash prefix so the full ID never leaves the machine.
// Returns nil segments (not an error) when the service is unreachable or has
// no data, so playback proceeds without skipping.
//
// The reported average duration is the mean of the video durations attached
// to the returned segments, used to place seek bar markers before the
// manifest's own duration is known.
func FetchSegments(videoID string, categories []Category) ([]Segment, float64, error) {
	if len(categories) == 0 {
		return nil, 0, nil
	}

	hash := sha256.Sum256([]byte(videoID))
	prefix := hex.EncodeToString(hash[:])[:4]

	names := make([]string, len(categories))
	for i, category := range categories {
		names[i] = fmt.Sprintf("%q", category)
	}

	endpoint := fmt.Sprintf(
		"%s/api/skipSegments/%s?categories=%s",
		strings.TrimRight(viper.GetString(key.SponsorAPIHost), "/"),
		prefix,
		url.QueryEscape("["+strings.Join(names, ",")+"]"),
	)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build segment request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Warnf("segment API request failed: %v", err)
		return nil, 0, nil // Graceful degradation
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode == http.StatusNotFound {
		// No segments registered for any video behind this prefix.
		return nil, 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Warnf("segment API returned status %d", resp.StatusCode)
		return nil, 0, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read segment response: %w", err)
	}

	var videos []apiVideo
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, 0, fmt.Errorf("parse segment response: %w", err)
	}

	for _, video := range videos {
		if video.VideoID != videoID {
			continue
		}

		var segments []Segment
		var durationSum float64
		var durationCount int
		for _, s := range video.Segments {
			if s.ActionType != "" && s.ActionType != "skip" {
				continue
			}
			segments = append(segments, Segment{
				UUID:      s.UUID,
				Category:  Category(s.Category),
				StartTime: s.Segment[0],
				EndTime:   s.Segment[1],
			})
			if s.VideoDuration > 0 {
				durationSum += s.VideoDuration
				durationCount++
			}
		}

		var averageDuration float64
		if durationCount > 0 {
			averageDuration = durationSum / float64(durationCount)
		}
		return segments, averageDuration, nil
	}

	return nil, 0, nil
}
