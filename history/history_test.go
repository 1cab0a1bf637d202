package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tubeplay-cli/tubeplay/filesystem"
	"github.com/tubeplay-cli/tubeplay/source"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a video", t, func() {
		src := source.Source{
			VideoID: "dQw4w9WgXcQ",
			Title:   "test video",
			Kind:    source.Adaptive,
		}

		Convey("When saving its playback position", func() {
			err := Save(src, 30, 600)
			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the record should be saved", func() {
					saved, err := Get()
					So(err, ShouldBeNil)
					So(len(saved), ShouldBeGreaterThan, 0)
					So(saved[src.VideoID].Title, ShouldEqual, src.Title)
					So(saved[src.VideoID].PositionSeconds, ShouldEqual, 30)
					So(saved[src.VideoID].WatchedPercentage, ShouldEqual, 5)
				})

				Convey("And resuming returns that position", func() {
					position, ok := Resume(src.VideoID)
					So(ok, ShouldBeTrue)
					So(position, ShouldEqual, 30)
				})
			})
		})

		Convey("When seeking backwards after watching further", func() {
			So(Save(src, 300, 600), ShouldBeNil)
			So(Save(src, 60, 600), ShouldBeNil)

			Convey("Then the position follows but the percentage keeps its maximum", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved[src.VideoID].PositionSeconds, ShouldEqual, 60)
				So(saved[src.VideoID].WatchedPercentage, ShouldEqual, 50)
			})
		})

		Convey("When the video was watched to the end", func() {
			So(Save(src, 595, 600), ShouldBeNil)

			Convey("Then it does not resume mid-way", func() {
				_, ok := Resume(src.VideoID)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When removing the record", func() {
			So(Save(src, 30, 600), ShouldBeNil)
			saved, err := Get()
			So(err, ShouldBeNil)
			So(Remove(saved[src.VideoID]), ShouldBeNil)

			Convey("Then it is gone", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved[src.VideoID], ShouldBeNil)

				_, ok := Resume(src.VideoID)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When resuming an unknown video", func() {
			_, ok := Resume("nonexistent")
			So(ok, ShouldBeFalse)
		})
	})
}
