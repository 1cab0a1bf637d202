package engine

import "fmt"

// Category classifies engine errors for session-level handling.
type Category int

const (
	CategoryNetwork Category = iota + 1
	CategoryMedia
	CategoryManifest
	// CategoryText covers caption track failures. These never make a session
	// fatal; they degrade to playback without that track.
	CategoryText
	// CategoryFilter wraps an underlying error raised inside the engine's
	// request/response filter pipeline. Always carries a cause.
	CategoryFilter
)

// String returns the canonical identifier of the category.
func (c Category) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryMedia:
		return "media"
	case CategoryManifest:
		return "manifest"
	case CategoryText:
		return "text"
	case CategoryFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Error is an engine-originated playback error.
type Error struct {
	Category Category
	Code     int
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine: %s (%d): %v", e.Category, e.Code, e.Cause)
	}
	return fmt.Sprintf("engine: %s (%d): %s", e.Category, e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// RootCause peels filter-wrapper errors down to the error that actually
// failed inside the filter pipeline. Non-filter errors are returned as-is.
func RootCause(err error) error {
	for {
		engineErr, ok := err.(*Error)
		if !ok || engineErr.Category != CategoryFilter || engineErr.Cause == nil {
			return err
		}
		err = engineErr.Cause
	}
}

// IsTextError reports whether the error, after unwrapping filter wrappers,
// belongs to the caption track category.
func IsTextError(err error) bool {
	engineErr, ok := RootCause(err).(*Error)
	return ok && engineErr.Category == CategoryText
}
