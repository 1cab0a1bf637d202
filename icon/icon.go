// Package icon provides the UI symbols and feedback indicators used across CLI output.
package icon

// Icon identifies a single UI symbol in the global registry.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Skip
	Subtitle
	Camera
	VolumeMute
	VolumeLow
	VolumeHigh
)

var icons = map[Icon]string{
	Success:    "+",
	Fail:       "x",
	Progress:   "*",
	Skip:       ">>",
	Subtitle:   "cc",
	Camera:     "[o]",
	VolumeMute: "vol-x",
	VolumeLow:  "vol-",
	VolumeHigh: "vol+",
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	return icons[i]
}
