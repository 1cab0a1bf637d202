package source

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseKind(t *testing.T) {
	Convey("ParseKind", t, func() {
		Convey("Should resolve canonical identifiers", func() {
			for input, want := range map[string]Kind{
				"adaptive": Adaptive,
				"dash":     Adaptive,
				"audio":    AudioOnly,
				"legacy":   Legacy,
			} {
				kind, err := ParseKind(input)
				So(err, ShouldBeNil)
				So(kind, ShouldEqual, want)
			}
		})

		Convey("Should reject unknown identifiers", func() {
			_, err := ParseKind("vhs")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestKindJSON(t *testing.T) {
	Convey("Kind JSON encoding", t, func() {
		Convey("Should decode a descriptor with a string kind", func() {
			var src Source
			err := json.Unmarshal([]byte(`{"kind": "legacy", "video_id": "abc", "title": "A video"}`), &src)
			So(err, ShouldBeNil)
			So(src.Kind, ShouldEqual, Legacy)
			So(src.VideoID, ShouldEqual, "abc")
		})

		Convey("Should encode the kind as its identifier", func() {
			out, err := json.Marshal(Source{Kind: AudioOnly, VideoID: "abc", Title: "A video"})
			So(err, ShouldBeNil)
			So(string(out), ShouldContainSubstring, `"kind":"audio"`)
		})

		Convey("Should reject an unknown kind", func() {
			var src Source
			err := json.Unmarshal([]byte(`{"kind": "vhs"}`), &src)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSortCaptions(t *testing.T) {
	Convey("SortCaptions", t, func() {
		captions := []CaptionTrack{
			{Language: "fr", Label: "French"},
			{Language: "en", Label: "English"},
			{Language: "de", Label: "German"},
		}

		Convey("Should put the preferred language first", func() {
			sorted := SortCaptions(captions, "fr")
			So(sorted[0].Language, ShouldEqual, "fr")
			So(sorted[1].Language, ShouldEqual, "de")
			So(sorted[2].Language, ShouldEqual, "en")
		})

		Convey("Should not mutate the input slice", func() {
			_ = SortCaptions(captions, "en")
			So(captions[0].Language, ShouldEqual, "fr")
		})
	})
}

func TestChapterIndexAt(t *testing.T) {
	Convey("ChapterIndexAt", t, func() {
		chapters := []Chapter{
			{Title: "Intro", StartSeconds: 0},
			{Title: "Middle", StartSeconds: 60},
			{Title: "End", StartSeconds: 120},
		}

		Convey("Should return the containing chapter", func() {
			So(ChapterIndexAt(chapters, 0), ShouldEqual, 0)
			So(ChapterIndexAt(chapters, 59.9), ShouldEqual, 0)
			So(ChapterIndexAt(chapters, 60), ShouldEqual, 1)
			So(ChapterIndexAt(chapters, 500), ShouldEqual, 2)
		})

		Convey("Should return -1 without chapters", func() {
			So(ChapterIndexAt(nil, 10), ShouldEqual, -1)
		})
	})
}
