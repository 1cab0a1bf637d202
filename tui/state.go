// Package tui provides the terminal playback interface.
package tui

type state int

const (
	loadingState state = iota
	playingState
	errorState
)
