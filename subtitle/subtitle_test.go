package subtitle

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		Convey("Should parse a minimal SRT file", func() {
			cues, err := Parse("1\n00:00:01,000 --> 00:00:02,000\nHello\n\n", "srt")
			So(err, ShouldBeNil)
			So(cues, ShouldHaveLength, 1)
			So(cues[0].StartTime, ShouldEqual, 1)
			So(cues[0].EndTime, ShouldEqual, 2)
			So(cues[0].Text, ShouldEqual, "Hello")
		})

		Convey("Should parse multi-block SRT with index lines and CRLF", func() {
			srt := "1\r\n00:00:01,000 --> 00:00:02,500\r\nFirst line\r\nsecond line\r\n\r\n2\r\n00:01:00,000 --> 00:01:05,000\r\nLater\r\n\r\n"
			cues, err := Parse(srt, "srt")
			So(err, ShouldBeNil)
			So(cues, ShouldHaveLength, 2)
			So(cues[0].Text, ShouldEqual, "First line second line")
			So(cues[1].StartTime, ShouldEqual, 60)
			So(cues[1].EndTime, ShouldEqual, 65)
		})

		Convey("Should parse a VTT file with MM:SS timestamps", func() {
			vtt := "WEBVTT\n\n00:05.000 --> 00:07.250\nShort form\n\n"
			cues, err := Parse(vtt, "vtt")
			So(err, ShouldBeNil)
			So(cues, ShouldHaveLength, 1)
			So(cues[0].StartTime, ShouldEqual, 5)
			So(cues[0].EndTime, ShouldEqual, 7.25)
		})

		Convey("Should parse hour-form timestamps", func() {
			vtt := "WEBVTT\n\n01:02:03.500 --> 01:02:04.000\nDeep in\n\n"
			cues, err := Parse(vtt, "vtt")
			So(err, ShouldBeNil)
			So(cues[0].StartTime, ShouldEqual, 3723.5)
		})

		Convey("Should drop malformed blocks silently", func() {
			vtt := "WEBVTT\n\nnot a timestamp\nsome text\n\n00:00:01.000 --> 00:00:02.000\nValid\n\nlonely line\n\n"
			cues, err := Parse(vtt, "vtt")
			So(err, ShouldBeNil)
			So(cues, ShouldHaveLength, 1)
			So(cues[0].Text, ShouldEqual, "Valid")
		})

		Convey("Should fail when nothing parseable remains", func() {
			_, err := Parse("garbage with no cues", "vtt")
			So(err, ShouldEqual, ErrNoCues)
		})

		Convey("Should reject unsupported extensions", func() {
			_, err := Parse("anything", "ass")
			So(err, ShouldNotBeNil)
		})

		Convey("Should accept a dotted extension", func() {
			cues, err := Parse("1\n00:00:01,000 --> 00:00:02,000\nHello\n\n", ".srt")
			So(err, ShouldBeNil)
			So(cues, ShouldHaveLength, 1)
		})
	})
}

func TestActiveCue(t *testing.T) {
	Convey("ActiveCue", t, func() {
		cues := []Cue{
			{StartTime: 1, EndTime: 2, Text: "Hello"},
			{StartTime: 4, EndTime: 6, Text: "World"},
		}

		Convey("Should return the cue containing the time", func() {
			cue, ok := ActiveCue(cues, 1.5)
			So(ok, ShouldBeTrue)
			So(cue.Text, ShouldEqual, "Hello")
		})

		Convey("Should treat cue bounds as inclusive", func() {
			_, ok := ActiveCue(cues, 2)
			So(ok, ShouldBeTrue)
			_, ok = ActiveCue(cues, 4)
			So(ok, ShouldBeTrue)
		})

		Convey("Should return false between cues", func() {
			_, ok := ActiveCue(cues, 3)
			So(ok, ShouldBeFalse)
		})

		Convey("Should return the first match for overlapping cues", func() {
			overlapping := []Cue{
				{StartTime: 0, EndTime: 10, Text: "first"},
				{StartTime: 5, EndTime: 15, Text: "second"},
			}
			cue, ok := ActiveCue(overlapping, 7)
			So(ok, ShouldBeTrue)
			So(cue.Text, ShouldEqual, "first")
		})
	})
}
