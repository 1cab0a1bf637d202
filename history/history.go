// Package history provides the implementation for tracking and persisting
// playback positions, so watching can resume where it stopped.
package history

import (
	"github.com/metafates/gache"

	"github.com/tubeplay-cli/tubeplay/filesystem"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/where"
)

// resumeThreshold is the watched percentage past which a video counts as
// finished and no longer resumes mid-way.
const resumeThreshold = 95.0

// cacher provides an abstracted, disk-backed registry for playback progress records.
var cacher = gache.New[map[string]*SavedPlayback](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of historical playback records from the persistent store.
func Get() (map[string]*SavedPlayback, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedPlayback), nil
	}
	return cached, nil
}

// Save persists the playback position of a video to the history registry.
// The watched percentage never regresses on re-watch.
func Save(src source.Source, position, duration float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedPlayback(src, position, duration)

	var percentage float64
	if duration > 0 {
		percentage = position / duration * 100
	}
	if existing, exists := saved[record.encode()]; exists && percentage < existing.WatchedPercentage {
		percentage = existing.WatchedPercentage
	}
	record.WatchedPercentage = percentage

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Resume returns the stored playback position for a video. Finished videos
// and unknown videos start over from zero.
func Resume(videoID string) (float64, bool) {
	saved, err := Get()
	if err != nil {
		return 0, false
	}

	record, exists := saved[videoID]
	if !exists || record.WatchedPercentage >= resumeThreshold {
		return 0, false
	}
	return record.PositionSeconds, true
}

// Remove permanently deletes a specific playback record from the history registry.
func Remove(record *SavedPlayback) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}
