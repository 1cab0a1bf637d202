package sponsor

// Marker is the seek bar geometry for one marked segment, expressed as
// fractions of the video duration so any bar width can render it.
type Marker struct {
	Title    string
	Category Category

	// Left is the fractional offset of the segment start, in [0, 1].
	Left float64

	// Width is the fractional length of the segment, in [0, 1].
	Width float64
}

// Markers lays out the seek bar markers for every marked segment. Segments
// from categories the policy ignores entirely are not included. Returns nil
// when the duration is not yet known.
func Markers(policy Policy, segments []Segment, duration float64) []Marker {
	if duration <= 0 {
		return nil
	}

	marked := make(map[Category]bool, len(policy.SeekBar))
	for _, category := range policy.SeekBar {
		marked[category] = true
	}

	var markers []Marker
	for _, segment := range segments {
		if !marked[segment.Category] {
			continue
		}
		markers = append(markers, Marker{
			Title:    segment.Category.Title(),
			Category: segment.Category,
			Left:     segment.StartTime / duration,
			Width:    (segment.EndTime - segment.StartTime) / duration,
		})
	}
	return markers
}
