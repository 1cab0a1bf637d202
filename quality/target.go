package quality

import (
	"fmt"
	"strconv"
	"strings"
)

// Target is a configured quality preference: either automatic (the engine's
// adaptive logic decides) or an explicit pixel dimension.
type Target struct {
	auto      bool
	dimension int
}

// Auto returns the automatic target.
func Auto() Target {
	return Target{auto: true}
}

// Dimension returns an explicit pixel dimension target.
func Dimension(px int) Target {
	return Target{dimension: px}
}

// ParseTarget parses a configured quality value. Accepted forms are "auto",
// a bare dimension such as "1080", or a suffixed one such as "1080p".
func ParseTarget(value string) (Target, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "auto" {
		return Auto(), nil
	}

	v = strings.TrimSuffix(v, "p")
	px, err := strconv.Atoi(v)
	if err != nil || px <= 0 {
		return Target{}, fmt.Errorf("invalid quality target %q", value)
	}

	return Dimension(px), nil
}

// IsAuto reports whether the engine's adaptive selection should be used.
func (t Target) IsAuto() bool {
	return t.auto
}

// Dimension returns the explicit pixel dimension. Only meaningful when
// IsAuto is false.
func (t Target) Dimension() int {
	return t.dimension
}

func (t Target) String() string {
	if t.auto {
		return "auto"
	}
	return strconv.Itoa(t.dimension) + "p"
}
