package sponsor

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/key"
)

func skipAll() Policy {
	policy := Policy{AutoSkip: make(map[Category]bool)}
	for _, category := range Categories {
		policy.AutoSkip[category] = true
	}
	return policy
}

func TestSkipperCheck(t *testing.T) {
	Convey("Given a skipper over auto-skipped segments", t, func() {
		const end = 600.0

		Convey("Playback inside a segment jumps to its end", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
			})

			newTime, ok := skipper.Check(7, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, 15)
		})

		Convey("Playback outside every segment does nothing", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
			})

			_, ok := skipper.Check(20, end, false)
			So(ok, ShouldBeFalse)
		})

		Convey("Back-to-back and overlapping segments are jumped in one seek", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 0, EndTime: 10},
				{UUID: "b", Category: CategoryIntro, StartTime: 10, EndTime: 20},
				{UUID: "c", Category: CategoryFiller, StartTime: 19, EndTime: 30},
			})

			newTime, ok := skipper.Check(1, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, 30)
		})

		Convey("A gap within the chain tolerance still chains", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 0, EndTime: 10},
				{UUID: "b", Category: CategoryIntro, StartTime: 10.1, EndTime: 20},
			})

			newTime, ok := skipper.Check(1, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, 20)
		})

		Convey("A gap beyond the chain tolerance does not chain", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 0, EndTime: 10},
				{UUID: "b", Category: CategoryIntro, StartTime: 11, EndTime: 20},
			})

			newTime, ok := skipper.Check(1, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, 10)
		})

		Convey("Categories outside the policy never skip", func() {
			policy := Policy{AutoSkip: map[Category]bool{CategorySponsor: true}}
			skipper := NewSkipper(policy, []Segment{
				{UUID: "a", Category: CategoryIntro, StartTime: 0, EndTime: 10},
			})

			_, ok := skipper.Check(1, end, false)
			So(ok, ShouldBeFalse)
		})

		Convey("No skip happens near the end of the seekable range", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategoryOutro, StartTime: 595, EndTime: 600},
			})

			_, ok := skipper.Check(599.5, end, false)
			So(ok, ShouldBeFalse)
		})

		Convey("No skip happens after playback has ended", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
			})

			_, ok := skipper.Check(7, end, true)
			So(ok, ShouldBeFalse)
		})

		Convey("A destination within the end guard clamps to the range end", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategoryOutro, StartTime: 590, EndTime: 599.5},
			})

			newTime, ok := skipper.Check(592, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, end)
		})

		Convey("A destination past the range end clamps to the range end", func() {
			skipper := NewSkipper(skipAll(), []Segment{
				{UUID: "a", Category: CategoryOutro, StartTime: 590, EndTime: 610},
			})

			newTime, ok := skipper.Check(592, end, false)
			So(ok, ShouldBeTrue)
			So(newTime, ShouldEqual, end)
		})

		Convey("An empty policy never skips", func() {
			skipper := NewSkipper(Policy{}, []Segment{
				{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
			})

			_, ok := skipper.Check(7, end, false)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestSkipperNotices(t *testing.T) {
	Convey("Given a skipper with notices enabled", t, func() {
		policy := skipAll()
		policy.ShowToast = true

		skipper := NewSkipper(policy, []Segment{
			{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
		})
		defer skipper.Stop()

		Convey("A skip records a notice for the segment", func() {
			_, ok := skipper.Check(7, 600, false)
			So(ok, ShouldBeTrue)

			notices := skipper.Notices()
			So(notices, ShouldHaveLength, 1)
			So(notices[0].UUID, ShouldEqual, "a")
			So(notices[0].Title, ShouldEqual, "Sponsor")
		})

		Convey("Re-skipping the same segment does not duplicate the notice", func() {
			skipper.Check(7, 600, false)
			skipper.Check(8, 600, false)

			So(skipper.Notices(), ShouldHaveLength, 1)
		})

		Convey("Stop clears pending notices", func() {
			skipper.Check(7, 600, false)
			skipper.Stop()

			So(skipper.Notices(), ShouldBeEmpty)
		})
	})

	Convey("With notices disabled a skip records nothing", t, func() {
		skipper := NewSkipper(skipAll(), []Segment{
			{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
		})

		_, ok := skipper.Check(7, 600, false)
		So(ok, ShouldBeTrue)
		So(skipper.Notices(), ShouldBeEmpty)
	})
}

func TestMarkers(t *testing.T) {
	Convey("Given marked segments and a known duration", t, func() {
		policy := Policy{SeekBar: []Category{CategorySponsor, CategoryIntro}}
		segments := []Segment{
			{Category: CategorySponsor, StartTime: 30, EndTime: 60},
			{Category: CategoryIntro, StartTime: 0, EndTime: 15},
			{Category: CategoryFiller, StartTime: 100, EndTime: 110},
		}

		Convey("Markers are laid out as duration fractions", func() {
			markers := Markers(policy, segments, 300)
			So(markers, ShouldHaveLength, 2)

			So(markers[0].Left, ShouldAlmostEqual, 0.1)
			So(markers[0].Width, ShouldAlmostEqual, 0.1)
			So(markers[0].Title, ShouldEqual, "Sponsor")

			So(markers[1].Left, ShouldAlmostEqual, 0)
			So(markers[1].Width, ShouldAlmostEqual, 0.05)
		})

		Convey("An unknown duration yields no markers", func() {
			So(Markers(policy, segments, 0), ShouldBeNil)
		})
	})
}

func TestPolicyFromConfig(t *testing.T) {
	Convey("Given sponsor configuration", t, func() {
		viper.Reset()
		defer viper.Reset()

		Convey("A disabled integration yields the zero policy", func() {
			viper.Set(key.SponsorEnable, false)

			policy := PolicyFromConfig()
			So(policy.AutoSkip, ShouldBeEmpty)
			So(policy.SeekBar, ShouldBeEmpty)
		})

		Convey("Per-category actions resolve into the expected sets", func() {
			viper.Set(key.SponsorEnable, true)
			viper.Set(key.SponsorShowToast, true)
			viper.Set(key.SponsorCategorySponsor, "skip")
			viper.Set(key.SponsorCategorySelfPromo, "mark")
			viper.Set(key.SponsorCategoryIntro, "prompt")
			viper.Set(key.SponsorCategoryOutro, "none")

			policy := PolicyFromConfig()
			So(policy.ShowToast, ShouldBeTrue)
			So(policy.AutoSkip[CategorySponsor], ShouldBeTrue)
			So(policy.AutoSkip[CategorySelfPromo], ShouldBeFalse)
			So(policy.Prompt[CategoryIntro], ShouldBeTrue)
			So(policy.SeekBar, ShouldContain, CategorySponsor)
			So(policy.SeekBar, ShouldContain, CategorySelfPromo)
			So(policy.SeekBar, ShouldContain, CategoryIntro)
			So(policy.SeekBar, ShouldNotContain, CategoryOutro)
		})
	})
}

func TestNoticeExpiry(t *testing.T) {
	Convey("Notices expire after their duration", t, func() {
		if testing.Short() {
			t.Skip("timer test skipped in short mode")
		}

		policy := skipAll()
		policy.ShowToast = true

		expired := make(chan struct{}, 1)
		skipper := NewSkipper(policy, []Segment{
			{UUID: "a", Category: CategorySponsor, StartTime: 5, EndTime: 15},
		})
		skipper.OnNoticeExpired = func() { expired <- struct{}{} }

		skipper.Check(7, 600, false)
		So(skipper.Notices(), ShouldHaveLength, 1)

		select {
		case <-expired:
		case <-time.After(noticeDuration + time.Second):
			t.Fatal("notice did not expire")
		}
		So(skipper.Notices(), ShouldBeEmpty)
	})
}
