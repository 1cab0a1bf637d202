// Package tui provides the terminal playback interface.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/tubeplay-cli/tubeplay/color"
	"github.com/tubeplay-cli/tubeplay/icon"
	"github.com/tubeplay-cli/tubeplay/session"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/sponsor"
	"github.com/tubeplay-cli/tubeplay/stats"
	"github.com/tubeplay-cli/tubeplay/style"
	"github.com/tubeplay-cli/tubeplay/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

// categoryColors assigns each seek bar marker category a color, following
// the conventional segment database palette as closely as eight colors allow.
var categoryColors = map[sponsor.Category]lipgloss.Color{
	sponsor.CategorySponsor:       color.Green,
	sponsor.CategorySelfPromo:     color.Yellow,
	sponsor.CategoryInteraction:   color.Purple,
	sponsor.CategoryIntro:         color.Cyan,
	sponsor.CategoryOutro:         color.Blue,
	sponsor.CategoryPreview:       color.HiBlue,
	sponsor.CategoryMusicOfftopic: color.Orange,
	sponsor.CategoryFiller:        color.Gray,
}

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState:
		output = b.viewPlaying()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return output
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.options.Source.Title,
		},
	)
}

func (b *statefulBubble) viewPlaying() string {
	controller := b.options.Controller
	eng := b.options.Engine

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(style.Fg(color.Purple)(b.options.Source.Title)),
		"",
		b.statusLine(),
		"",
	}

	seekRange := eng.SeekRange()
	currentTime := eng.CurrentTime()
	lines = append(lines,
		b.seekBar(currentTime, seekRange.Start, seekRange.Span()),
		b.timeLine(currentTime, seekRange.Start, seekRange.Span()),
	)

	if cue, ok := controller.ActiveCustomCue(); ok {
		lines = append(lines, "", style.Truncate(b.width)(icon.Get(icon.Subtitle)+" "+style.Italic(cue.Text)))
	}

	for _, notice := range controller.Notices() {
		lines = append(lines, "", icon.Get(icon.Skip)+" Skipped "+style.Fg(color.Green)(notice.Title))
	}

	if change, ok := controller.Popup(); ok {
		popup := change.Message
		if change.HasIcon {
			popup = icon.Get(change.Icon) + " " + popup
		}
		lines = append(lines, "", style.Bold(popup))
	}

	if controller.StatsVisible() {
		lines = append(lines, "")
		lines = append(lines, b.statsLines()...)
	}

	return b.renderLines(true, lines)
}

// statusLine summarizes the transport state: paused or playing, buffering,
// live edge and the active source kind.
func (b *statefulBubble) statusLine() string {
	controller := b.options.Controller
	eng := b.options.Engine

	var parts []string

	switch {
	case controller.Buffering():
		parts = append(parts, b.spinnerC.View()+" buffering")
	case eng.Paused():
		parts = append(parts, style.Faint("paused"))
	default:
		parts = append(parts, icon.Get(icon.Progress)+" playing")
	}

	if controller.Live() {
		parts = append(parts, style.Tag(color.New("230"), color.Red)("LIVE"))
	}

	if controller.State() == session.StateSwitching {
		parts = append(parts, style.Faint("switching"))
	}

	parts = append(parts, style.Faint(b.kindLabel()))

	return strings.Join(parts, "  ")
}

func (b *statefulBubble) kindLabel() string {
	if format, ok := b.options.Controller.ActiveLegacyFormat(); ok {
		return fmt.Sprintf("legacy %dp", format.Height)
	}
	return b.options.Source.Kind.String()
}

// seekBar renders the playback position as a bar with the sponsor category
// markers overlaid at their fractional offsets.
func (b *statefulBubble) seekBar(currentTime, start, span float64) string {
	width := util.Min(b.width, 60)
	if width <= 0 || span <= 0 {
		return ""
	}

	var fraction float64
	if span > 0 {
		fraction = util.Clamp((currentTime-start)/span, 0, 1)
	}
	filled := int(fraction * float64(width))

	cells := make([]string, width)
	for i := range cells {
		if i < filled {
			cells[i] = style.Fg(color.HiPurple)("█")
		} else {
			cells[i] = style.Faint("─")
		}
	}

	markers := sponsor.Markers(b.options.Policy, b.options.Segments, span)
	for _, marker := range markers {
		from := util.Clamp(int(marker.Left*float64(width)), 0, width-1)
		to := util.Clamp(int((marker.Left+marker.Width)*float64(width)), from, width-1)
		markerColor, ok := categoryColors[marker.Category]
		if !ok {
			markerColor = color.Gray
		}
		for i := from; i <= to; i++ {
			cells[i] = style.Fg(markerColor)("▁")
		}
	}

	for _, chapter := range b.options.Source.Chapters {
		if chapter.StartSeconds <= start {
			continue
		}
		at := util.Clamp(int((chapter.StartSeconds-start)/span*float64(width)), 0, width-1)
		cells[at] = style.Fg(color.White)("|")
	}

	return strings.Join(cells, "")
}

func (b *statefulBubble) timeLine(currentTime, start, span float64) string {
	if b.options.Controller.Live() {
		return style.Faint("at live edge")
	}
	return fmt.Sprintf(
		"%s / %s",
		util.FormatDuration(currentTime-start),
		style.Faint(util.FormatDuration(span)),
	)
}

// statsLines renders the diagnostic overlay from the stats aggregator.
func (b *statefulBubble) statsLines() []string {
	snap := b.options.Controller.Stats()

	lines := []string{
		style.Tag(color.New("230"), color.New("62"))("Stats"),
		"",
	}

	row := func(label, value string) string {
		return fmt.Sprintf("%-18s %s", style.Faint(label), value)
	}

	if snap.Resolution.Width > 0 {
		resolution := fmt.Sprintf("%d×%d", snap.Resolution.Width, snap.Resolution.Height)
		if snap.Resolution.FrameRate > 0 {
			resolution += fmt.Sprintf("@%g", snap.Resolution.FrameRate)
		}
		lines = append(lines, row("Resolution", resolution))
	}
	if codecs := describeCodecs(snap.Codecs); codecs != "" {
		lines = append(lines, row("Codecs", codecs))
	}
	if itags := describeItags(snap.Codecs); itags != "" {
		lines = append(lines, row("Itags", itags))
	}
	if snap.BitrateKbps > 0 {
		lines = append(lines, row("Bitrate", fmt.Sprintf("%.2f kbps", snap.BitrateKbps)))
	}
	if b.options.Source.Kind != source.Legacy {
		lines = append(lines, row("Bandwidth", fmt.Sprintf("%.2f kbps", snap.BandwidthKbps)))
	}
	lines = append(lines,
		row("Volume", fmt.Sprintf("%.0f%%", snap.VolumePercent)),
		row("Frames", fmt.Sprintf("%d total, %d dropped", snap.Frames.Total, snap.Frames.Dropped)),
		row("Buffered", b.progressC.ViewAs(snap.BufferedPercent/100)),
	)

	return lines
}

func describeCodecs(codecs stats.Codecs) string {
	parts := make([]string, 0, 2)
	if codecs.VideoCodec != "" {
		parts = append(parts, codecs.VideoCodec)
	}
	if codecs.AudioCodec != "" {
		parts = append(parts, codecs.AudioCodec)
	}
	return strings.Join(parts, " / ")
}

func describeItags(codecs stats.Codecs) string {
	parts := make([]string, 0, 2)
	if codecs.VideoItag != "" {
		parts = append(parts, codecs.VideoItag)
	}
	if codecs.AudioItag != "" && codecs.AudioItag != codecs.VideoItag {
		parts = append(parts, codecs.AudioItag)
	}
	return strings.Join(parts, " / ")
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Playback failed:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
