package sponsor

import (
	"sync"
	"time"
)

const (
	// ChainTolerance is the maximum gap, in seconds, between the end of one
	// skipped segment and the start of the next for both to be jumped in a
	// single seek.
	ChainTolerance = 0.150

	// EndGuard suppresses skips when playback, or the skip destination, is
	// within this many seconds of the end of the seekable range.
	EndGuard = 1.0

	// noticeDuration is how long a skipped-segment notice stays visible. A
	// repeat skip of the same segment restarts the countdown.
	noticeDuration = 2 * time.Second
)

// Notice is a transient on-screen record of a skipped segment.
type Notice struct {
	UUID  string
	Title string
}

type notice struct {
	Notice
	timer *time.Timer
}

// Skipper decides, for each tick of the playback clock, whether the current
// position falls inside an auto-skipped segment and where to jump to.
type Skipper struct {
	policy   Policy
	segments []Segment

	mu      sync.Mutex
	notices []*notice

	// OnNoticeExpired, when set, is called after a notice disappears so the
	// presentation layer can redraw. Called from a timer goroutine.
	OnNoticeExpired func()
}

// NewSkipper builds a skipper over the session's segment list.
func NewSkipper(policy Policy, segments []Segment) *Skipper {
	return &Skipper{policy: policy, segments: segments}
}

// Segments returns the full labelled segment list.
func (s *Skipper) Segments() []Segment {
	return s.segments
}

// Check inspects the playback clock and reports the time to seek to, if any.
//
// Consecutive auto-skipped segments whose gap is within the chain tolerance
// are jumped in one seek, landing after the last of them. No skip happens
// when playback has ended or sits within the end guard of the seekable range,
// and a destination inside the end guard is clamped to the range end.
func (s *Skipper) Check(currentTime, seekRangeEnd float64, ended bool) (float64, bool) {
	if len(s.policy.AutoSkip) == 0 {
		return 0, false
	}

	newTime := 0.0
	var skipped []Segment
	for _, segment := range s.segments {
		if !s.policy.AutoSkip[segment.Category] || currentTime >= segment.EndTime {
			continue
		}
		inside := segment.StartTime <= currentTime
		chained := newTime > 0 &&
			(segment.StartTime < newTime || segment.StartTime-newTime <= ChainTolerance) &&
			segment.EndTime > newTime
		if inside || chained {
			newTime = segment.EndTime
			skipped = append(skipped, segment)
		}
	}

	if newTime == 0 || ended {
		return 0, false
	}
	if abs(seekRangeEnd-currentTime) < EndGuard {
		return 0, false
	}
	if newTime > seekRangeEnd || abs(seekRangeEnd-newTime) < EndGuard {
		newTime = seekRangeEnd
	}

	if s.policy.ShowToast {
		s.announce(skipped)
	}

	return newTime, true
}

// Notices returns the currently visible skipped-segment notices, oldest first.
func (s *Skipper) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notice, len(s.notices))
	for i, n := range s.notices {
		out[i] = n.Notice
	}
	return out
}

// Stop cancels every pending notice timer. Used during teardown.
func (s *Skipper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notices {
		n.timer.Stop()
	}
	s.notices = nil
}

func (s *Skipper) announce(skipped []Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, segment := range skipped {
		if existing := s.find(segment.UUID); existing != nil {
			existing.timer.Stop()
			existing.timer = s.expireAfter(segment.UUID)
			continue
		}
		n := &notice{Notice: Notice{UUID: segment.UUID, Title: segment.Category.Title()}}
		n.timer = s.expireAfter(segment.UUID)
		s.notices = append(s.notices, n)
	}
}

func (s *Skipper) find(uuid string) *notice {
	for _, n := range s.notices {
		if n.UUID == uuid {
			return n
		}
	}
	return nil
}

func (s *Skipper) expireAfter(uuid string) *time.Timer {
	return time.AfterFunc(noticeDuration, func() {
		s.mu.Lock()
		for i, n := range s.notices {
			if n.UUID == uuid {
				s.notices = append(s.notices[:i], s.notices[i+1:]...)
				break
			}
		}
		callback := s.OnNoticeExpired
		s.mu.Unlock()

		if callback != nil {
			callback()
		}
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
