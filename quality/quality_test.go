package quality

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/source"
)

func variant(id string, width, height, bandwidth int) engine.VariantTrack {
	return engine.VariantTrack{
		ID:        id,
		Width:     width,
		Height:    height,
		Bandwidth: bandwidth,
	}
}

func TestSelect(t *testing.T) {
	Convey("Given a ladder of landscape representations", t, func() {
		variants := []engine.VariantTrack{
			variant("2160", 3840, 2160, 20_000_000),
			variant("1080", 1920, 1080, 5_000_000),
			variant("720", 1280, 720, 2_500_000),
			variant("360", 640, 360, 700_000),
		}

		Convey("An exact dimension match wins", func() {
			So(Select(1080, variants, Context{}).ID, ShouldEqual, "1080")
		})

		Convey("Without an exact match the smallest dimension above the target wins", func() {
			So(Select(480, variants, Context{}).ID, ShouldEqual, "720")
			So(Select(1440, variants, Context{}).ID, ShouldEqual, "2160")
		})

		Convey("A representation at or above the target is chosen whenever one exists", func() {
			for _, target := range []int{144, 360, 480, 720, 1080, 1440, 2160} {
				chosen := Select(target, variants, Context{})
				So(chosen.Height, ShouldBeGreaterThanOrEqualTo, target)
			}
		})

		Convey("When nothing reaches the target the highest bitrate wins", func() {
			So(Select(4320, variants, Context{}).ID, ShouldEqual, "2160")
		})
	})

	Convey("Given several representations at the same dimension", t, func() {
		variants := []engine.VariantTrack{
			variant("low", 1920, 1080, 3_000_000),
			variant("high", 1920, 1080, 6_000_000),
			variant("mid", 1920, 1080, 4_500_000),
		}

		Convey("Ties break towards the highest bitrate", func() {
			So(Select(1080, variants, Context{}).ID, ShouldEqual, "high")
		})

		Convey("A prior audio bandwidth narrows to the closest match", func() {
			variants[0].AudioBandwidth = 64_000
			variants[1].AudioBandwidth = 256_000
			variants[2].AudioBandwidth = 128_000

			ctx := Context{AudioBandwidth: mo.Some(120_000)}
			So(Select(1080, variants, ctx).ID, ShouldEqual, "mid")
		})
	})

	Convey("Given portrait representations", t, func() {
		variants := []engine.VariantTrack{
			variant("tall", 1080, 1920, 5_000_000),
			variant("short", 720, 1280, 2_500_000),
		}

		Convey("The target matches against width", func() {
			So(Select(720, variants, Context{}).ID, ShouldEqual, "short")
			So(Select(1080, variants, Context{}).ID, ShouldEqual, "tall")
		})
	})

	Convey("Given a source with multiple audio tracks", t, func() {
		main := variant("main", 1920, 1080, 5_000_000)
		main.AudioRoles = []string{"main"}
		main.Label = "English"
		dub := variant("dub", 1920, 1080, 5_100_000)
		dub.AudioRoles = []string{"dub"}
		dub.Label = "Commentary"
		variants := []engine.VariantTrack{dub, main}

		Convey("Unpinned selection is restricted to the main role", func() {
			ctx := Context{MultipleAudioTracks: true}
			So(Select(1080, variants, ctx).ID, ShouldEqual, "main")
		})

		Convey("A pinned label overrides the role restriction", func() {
			ctx := Context{
				AudioLabel:          mo.Some("Commentary"),
				MultipleAudioTracks: true,
			}
			So(Select(1080, variants, ctx).ID, ShouldEqual, "dub")
		})

		Convey("A pinned label matching nothing falls back to the full set", func() {
			ctx := Context{AudioLabel: mo.Some("Director's cut")}
			So(Select(1080, variants, ctx).Bandwidth, ShouldEqual, 5_100_000)
		})
	})

	Convey("Selecting from no representations panics", t, func() {
		So(func() { Select(1080, nil, Context{}) }, ShouldPanic)
	})
}

func TestSelectLegacy(t *testing.T) {
	Convey("Given a fixed list of legacy formats", t, func() {
		formats := []source.LegacyFormat{
			{Itag: "18", Height: 360, Bitrate: 500_000},
			{Itag: "22", Height: 720, Bitrate: 2_000_000},
		}

		Convey("An exact height match wins", func() {
			So(SelectLegacy(720, formats).Itag, ShouldEqual, "22")
		})

		Convey("The smallest height above the target wins otherwise", func() {
			So(SelectLegacy(480, formats).Itag, ShouldEqual, "22")
		})

		Convey("When nothing reaches the target the highest bitrate wins", func() {
			So(SelectLegacy(1080, formats).Itag, ShouldEqual, "22")
		})
	})
}

func TestParseTarget(t *testing.T) {
	Convey("Parsing quality targets", t, func() {
		Convey("auto and the empty string are automatic", func() {
			for _, v := range []string{"auto", "", "AUTO"} {
				target, err := ParseTarget(v)
				So(err, ShouldBeNil)
				So(target.IsAuto(), ShouldBeTrue)
			}
		})

		Convey("Bare and suffixed dimensions parse", func() {
			for _, v := range []string{"1080", "1080p", " 1080P "} {
				target, err := ParseTarget(v)
				So(err, ShouldBeNil)
				So(target.IsAuto(), ShouldBeFalse)
				So(target.Dimension(), ShouldEqual, 1080)
			}
		})

		Convey("Garbage is rejected", func() {
			_, err := ParseTarget("best")
			So(err, ShouldNotBeNil)

			_, err = ParseTarget("-720")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHighestAudioBandwidth(t *testing.T) {
	Convey("The variant with the maximum audio bandwidth wins", t, func() {
		variants := []engine.VariantTrack{
			{ID: "low", AudioBandwidth: 64_000},
			{ID: "high", AudioBandwidth: 256_000},
			{ID: "mid", AudioBandwidth: 128_000},
		}
		So(HighestAudioBandwidth(variants).ID, ShouldEqual, "high")
	})
}
