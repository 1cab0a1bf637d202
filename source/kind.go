// Package source defines the media source data model consumed by a playback session.
package source

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the three mutually exclusive source representations.
type Kind int

const (
	// Adaptive is a manifest-driven source exposing a flat set of variant tracks.
	Adaptive Kind = iota + 1
	// AudioOnly is a manifest-driven source with no video representations.
	AudioOnly
	// Legacy is a fixed ordered list of discrete pre-muxed quality options.
	Legacy
)

// String returns the canonical identifier of the source kind.
func (k Kind) String() string {
	switch k {
	case Adaptive:
		return "adaptive"
	case AudioOnly:
		return "audio"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as its canonical string identifier.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON resolves the kind from its canonical string identifier.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("source kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a Kind from its canonical string identifier.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "adaptive", "dash":
		return Adaptive, nil
	case "audio":
		return AudioOnly, nil
	case "legacy":
		return Legacy, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}
