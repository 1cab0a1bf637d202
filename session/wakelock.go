package session

import "sync"

// Blocker keeps the system awake while playback is active. Implementations
// talk to the platform's power management; tests substitute their own.
type Blocker interface {
	Start() error
	Stop() error
}

// wakeLock serializes Blocker use and guarantees the underlying blocker is
// started at most once while held and released exactly once, no matter how
// many paths call stop during pause, error handling and teardown.
type wakeLock struct {
	mu      sync.Mutex
	blocker Blocker
	held    bool
}

func (w *wakeLock) start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.blocker == nil || w.held {
		return nil
	}
	if err := w.blocker.Start(); err != nil {
		return err
	}
	w.held = true
	return nil
}

func (w *wakeLock) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.blocker == nil || !w.held {
		return
	}
	w.held = false
	// Release failures are not actionable here.
	_ = w.blocker.Stop()
}
