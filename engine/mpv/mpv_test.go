package mpv

import (
	"net"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/tubeplay-cli/tubeplay/engine"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Sanitize media target", t, func() {
		Convey("Accepts http and https URLs", func() {
			for _, link := range []string{
				"http://example.com/stream.m3u8",
				"https://example.com/videoplayback?itag=22",
			} {
				out, err := sanitizeMediaTarget(link)
				So(err, ShouldBeNil)
				So(out, ShouldEqual, link)
			}
		})

		Convey("Cleans local paths", func() {
			out, err := sanitizeMediaTarget("videos//./episode.mp4")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "videos/episode.mp4")
		})

		Convey("Rejects empty targets", func() {
			_, err := sanitizeMediaTarget("   ")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects control characters", func() {
			_, err := sanitizeMediaTarget("https://example.com/a\nb")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects flag-like targets", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects non-http schemes", func() {
			_, err := sanitizeMediaTarget("ftp://example.com/video.mp4")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSanitizeTitle(t *testing.T) {
	Convey("Sanitize title", t, func() {
		Convey("Collapses line breaks and tabs into spaces", func() {
			So(sanitizeTitle("a\nb\tc"), ShouldEqual, "a b c")
		})

		Convey("Strips null bytes and surrounding whitespace", func() {
			So(sanitizeTitle("  epi\x00sode  "), ShouldEqual, "episode")
		})
	})
}

func TestListenerStop(t *testing.T) {
	Convey("Stopping the event listener", t, func() {
		e := New("test")
		server, client := net.Pipe()
		defer server.Close()

		l := newListener(e)
		l.conn = client
		l.listening = true
		go l.readLoop()

		go func() {
			_, _ = server.Write([]byte(`{"event":"property-change","name":"speed","data":1.5}` + "\n"))
		}()

		Convey("Events flow until stop", func() {
			ev := <-e.events
			rate, ok := ev.(engine.RateChangeEvent)
			So(ok, ShouldBeTrue)
			So(rate.Rate, ShouldEqual, 1.5)

			Convey("Stop waits for the read loop, so closing the stream is safe", func() {
				l.stop()
				So(func() { close(e.events) }, ShouldNotPanic)
			})
		})
	})
}
