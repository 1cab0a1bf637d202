package input

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tubeplay-cli/tubeplay/constant"
)

func loaded() State {
	return State{Loaded: true, Seekable: true, Platform: constant.Linux}
}

func TestDispatch(t *testing.T) {
	Convey("Given a loaded, seekable session", t, func() {
		state := loaded()

		Convey("The play toggle fires for space, spacebar and k", func() {
			for _, k := range []string{" ", "spacebar", "k", "K"} {
				action, ok := Dispatch(k, Modifiers{}, state)
				So(ok, ShouldBeTrue)
				So(action.Command, ShouldEqual, CommandTogglePlay)
			}
		})

		Convey("The large seeks map to j and l", func() {
			action, _ := Dispatch("j", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandSeekBackLarge)
			action, _ = Dispatch("l", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandSeekForwardLarge)
		})

		Convey("The rate steps map to o and p", func() {
			action, _ := Dispatch("o", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandRateDown)
			action, _ = Dispatch("p", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandRateUp)
		})

		Convey("Digits seek to a fraction of the seekable range", func() {
			action, ok := Dispatch("7", Modifiers{}, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandSeekPercent)
			So(action.Percent, ShouldAlmostEqual, 0.7)
		})

		Convey("Digits are inert when seeking is not possible", func() {
			state.Seekable = false
			_, ok := Dispatch("7", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Nothing fires before the session has loaded", func() {
			state.Loaded = false
			_, ok := Dispatch("k", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Nothing fires while a text input has focus", func() {
			state.InputFocused = true
			_, ok := Dispatch("k", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Alt suppresses every binding", func() {
			_, ok := Dispatch("k", Modifiers{Alt: true}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Unbound keys produce nothing", func() {
			_, ok := Dispatch("q", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Modifier handling", t, func() {
		state := loaded()

		Convey("Shift+? backs out of fullscreen and full-window", func() {
			action, ok := Dispatch("?", Modifiers{Shift: true}, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandExitAllModes)
		})

		Convey("Ctrl suppresses non-arrow bindings on linux", func() {
			_, ok := Dispatch("k", Modifiers{Ctrl: true}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Ctrl suppresses everything on mac", func() {
			state.Platform = constant.Darwin
			_, ok := Dispatch("arrowleft", Modifiers{Ctrl: true}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Copy is never shadowed", func() {
			state.HasCaptions = true
			_, ok := Dispatch("c", Modifiers{Ctrl: true}, state)
			So(ok, ShouldBeFalse)
			_, ok = Dispatch("c", Modifiers{Meta: true}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Meta+m does not toggle mute", func() {
			_, ok := Dispatch("m", Modifiers{Meta: true}, state)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Chapter jumps", t, func() {
		state := loaded()
		state.ChapterCount = 3
		state.ChapterIndex = 1

		Convey("Ctrl+arrow jumps chapters on linux", func() {
			action, _ := Dispatch("arrowleft", Modifiers{Ctrl: true}, state)
			So(action.Command, ShouldEqual, CommandChapterPrevious)
			action, _ = Dispatch("arrowright", Modifiers{Ctrl: true}, state)
			So(action.Command, ShouldEqual, CommandChapterNext)
		})

		Convey("Cmd+arrow jumps chapters on mac", func() {
			state.Platform = constant.Darwin
			action, _ := Dispatch("arrowright", Modifiers{Meta: true}, state)
			So(action.Command, ShouldEqual, CommandChapterNext)
		})

		Convey("A bare arrow seeks instead", func() {
			action, _ := Dispatch("arrowleft", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandSeekBack)
		})

		Convey("There is no jump past the first or last chapter", func() {
			state.ChapterIndex = 0
			action, _ := Dispatch("arrowleft", Modifiers{Ctrl: true}, state)
			So(action.Command, ShouldEqual, CommandSeekBack)

			state.ChapterIndex = 2
			action, _ = Dispatch("arrowright", Modifiers{Ctrl: true}, state)
			So(action.Command, ShouldEqual, CommandSeekForward)
		})
	})

	Convey("Picture-dependent bindings", t, func() {
		state := loaded()

		Convey("Frame stepping requires video and seekability", func() {
			action, ok := Dispatch(".", Modifiers{}, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandFrameForward)

			state.AudioOnly = true
			_, ok = Dispatch(".", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.AudioOnly = false
			state.Seekable = false
			_, ok = Dispatch(",", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Picture in picture is inert for audio-only sessions", func() {
			state.AudioOnly = true
			_, ok := Dispatch("i", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Screenshots require the feature and a picture", func() {
			_, ok := Dispatch("u", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.ScreenshotEnabled = true
			action, ok := Dispatch("u", Modifiers{}, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandScreenshot)

			state.AudioOnly = true
			_, ok = Dispatch("u", Modifiers{}, state)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Conditional toggles", t, func() {
		state := loaded()

		Convey("Caption toggle requires caption tracks", func() {
			_, ok := Dispatch("c", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.HasCaptions = true
			action, _ := Dispatch("c", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandToggleCaptions)
		})

		Convey("Local subtitle toggle requires parsed cues", func() {
			_, ok := Dispatch("x", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.HasCustomCues = true
			action, _ := Dispatch("x", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandToggleCustomSubtitles)
		})

		Convey("Escape only exits full-window when it is active", func() {
			_, ok := Dispatch("escape", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.FullWindow = true
			action, _ := Dispatch("escape", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandExitFullWindow)
		})

		Convey("Theatre mode requires a surface that supports it", func() {
			_, ok := Dispatch("t", Modifiers{}, state)
			So(ok, ShouldBeFalse)

			state.TheatrePossible = true
			action, _ := Dispatch("t", Modifiers{}, state)
			So(action.Command, ShouldEqual, CommandToggleTheatre)
		})
	})
}

func TestDispatchScroll(t *testing.T) {
	Convey("Given a loaded session", t, func() {
		state := loaded()

		Convey("Volume mode maps scroll up and down to volume steps", func() {
			action, ok := DispatchScroll(0, -1, Modifiers{}, ScrollVolume, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandVolumeUp)

			action, _ = DispatchScroll(0, 1, Modifiers{}, ScrollVolume, state)
			So(action.Command, ShouldEqual, CommandVolumeDown)
		})

		Convey("Horizontal scroll counts too", func() {
			action, _ := DispatchScroll(1, 0, Modifiers{}, ScrollVolume, state)
			So(action.Command, ShouldEqual, CommandVolumeUp)
		})

		Convey("Seek mode seeks, but only when seekable", func() {
			action, ok := DispatchScroll(0, -1, Modifiers{}, ScrollSeek, state)
			So(ok, ShouldBeTrue)
			So(action.Command, ShouldEqual, CommandSeekForward)

			state.Seekable = false
			_, ok = DispatchScroll(0, -1, Modifiers{}, ScrollSeek, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Ctrl forces a fine rate adjustment in any mode", func() {
			action, _ := DispatchScroll(0, -1, Modifiers{Ctrl: true}, ScrollVolume, state)
			So(action.Command, ShouldEqual, CommandRateUpFine)

			action, _ = DispatchScroll(0, 1, Modifiers{Meta: true}, ScrollSeek, state)
			So(action.Command, ShouldEqual, CommandRateDownFine)
		})

		Convey("The none mode ignores unmodified scrolls", func() {
			_, ok := DispatchScroll(0, -1, Modifiers{}, ScrollNone, state)
			So(ok, ShouldBeFalse)
		})

		Convey("Nothing fires before load", func() {
			state.Loaded = false
			_, ok := DispatchScroll(0, -1, Modifiers{}, ScrollVolume, state)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Parsing scroll modes", t, func() {
		So(ParseScrollMode("seek"), ShouldEqual, ScrollSeek)
		So(ParseScrollMode("rate"), ShouldEqual, ScrollRate)
		So(ParseScrollMode("none"), ShouldEqual, ScrollNone)
		So(ParseScrollMode("volume"), ShouldEqual, ScrollVolume)
		So(ParseScrollMode("bogus"), ShouldEqual, ScrollVolume)
	})
}
