// Package cmd implements the command-line interface for tubeplay.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/engine/mpv"
	"github.com/tubeplay-cli/tubeplay/filesystem"
	"github.com/tubeplay-cli/tubeplay/history"
	"github.com/tubeplay-cli/tubeplay/key"
	"github.com/tubeplay-cli/tubeplay/log"
	"github.com/tubeplay-cli/tubeplay/quality"
	"github.com/tubeplay-cli/tubeplay/session"
	"github.com/tubeplay-cli/tubeplay/source"
	"github.com/tubeplay-cli/tubeplay/sponsor"
	"github.com/tubeplay-cli/tubeplay/subtitle"
	"github.com/tubeplay-cli/tubeplay/tui"
	"github.com/tubeplay-cli/tubeplay/util"
	"github.com/tubeplay-cli/tubeplay/where"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("quality", "q", "", "Playback quality: \"auto\" or a pixel dimension such as 1080")
	runCmd.Flags().StringP("subs", "s", "", "Subtitle file, or a directory to fuzzy-match one from")
	runCmd.Flags().Float64P("start", "t", 0, "Start position in seconds")
	runCmd.Flags().BoolP("continue", "c", false, "Resume from the saved playback position")
	runCmd.Flags().BoolP("json", "j", false, "Print a machine-readable session summary after playback")
	runCmd.Flags().Bool("no-sponsor", false, "Disable sponsor segment skipping for this run")
}

// runCmd plays a media source through the session controller.
var runCmd = &cobra.Command{
	Use:   "run [target]",
	Short: "Play a media source",
	Long: `Play a media source through the playback session controller.

The target is either a source descriptor (a JSON file describing the manifest
or the discrete legacy formats of a video) or a direct media URL, which plays
as a single legacy format.`,
	Args:    cobra.ExactArgs(1),
	Example: "  tubeplay run ./video.json --quality 1080\n  tubeplay run https://example.org/video.mp4",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := readSource(args[0])
		handleErr(err)

		if start := lo.Must(cmd.Flags().GetFloat64("start")); start > 0 {
			src.StartTime = start
		}
		if lo.Must(cmd.Flags().GetBool("continue")) {
			if position, ok := history.Resume(src.VideoID); ok {
				src.StartTime = position
			}
		}

		target, err := resolveTarget(lo.Must(cmd.Flags().GetString("quality")), &src)
		handleErr(err)

		policy := sponsor.PolicyFromConfig()
		if lo.Must(cmd.Flags().GetBool("no-sponsor")) {
			policy = sponsor.Policy{}
		}

		var segments []sponsor.Segment
		if len(policy.SeekBar) > 0 && src.VideoID != "" {
			segments, _, err = sponsor.FetchSegments(src.VideoID, policy.SeekBar)
			handleErr(err)
			log.Infof("Found %s to mark", util.Quantify(len(segments), "segment", "segments"))
		}

		cues, err := loadSubtitles(lo.Must(cmd.Flags().GetString("subs")), src.Title)
		handleErr(err)

		eng := mpv.New(src.Title)
		controller := session.New(eng, src, target, session.Options{
			Skipper:           sponsor.NewSkipper(policy, segments),
			RateInterval:      viper.GetFloat64(key.PlaybackRateInterval),
			RateMax:           viper.GetFloat64(key.PlaybackRateMax),
			SkipInterval:      viper.GetFloat64(key.PlaybackSkipInterval),
			ScreenshotEnabled: viper.GetBool(key.ScreenshotEnable),
			Autoplay:          viper.GetBool(key.PlaybackAutoplay),
		})
		if len(cues) > 0 {
			controller.SetCustomCues(cues)
		}
		controller.OnScreenshot = func() error {
			_, err := eng.Screenshot(where.Screenshots(), src.Title)
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		handleErr(controller.Load(ctx))
		go controller.Run(ctx)

		handleErr(tui.Run(ctx, &tui.Options{
			Controller: controller,
			Engine:     eng,
			Source:     src,
			Policy:     policy,
			Segments:   segments,
		}))

		position := eng.CurrentTime()
		duration := eng.Duration()

		_, teardownErr := controller.Teardown(ctx)

		if viper.GetBool(key.HistorySaveOnWatch) && src.VideoID != "" && duration > 0 {
			if err := history.Save(src, position, duration); err != nil {
				log.Warnf("save history: %v", err)
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			printSummary(cmd, src, controller, position, duration)
		}

		handleErr(teardownErr)
	},
}

// readSource builds a source from the target argument: a JSON descriptor
// file, or a bare URL played as one legacy format.
func readSource(target string) (source.Source, error) {
	if strings.Contains(target, "://") {
		return source.Source{
			Kind:     source.Legacy,
			Title:    util.FileStem(target),
			Seekable: true,
			LegacyFormats: []source.LegacyFormat{
				{URL: target},
			},
		}, nil
	}

	contents, err := filesystem.API().ReadFile(target)
	if err != nil {
		return source.Source{}, fmt.Errorf("read source descriptor: %w", err)
	}

	var src source.Source
	if err := json.Unmarshal(contents, &src); err != nil {
		return source.Source{}, fmt.Errorf("parse source descriptor: %w", err)
	}
	if src.Title == "" {
		src.Title = util.FileStem(target)
	}
	return src, nil
}

// resolveTarget turns the quality flag (or the configured default) into a
// target, prompting for a legacy format when several candidates exist and
// nothing was specified.
func resolveTarget(flag string, src *source.Source) (quality.Target, error) {
	value := flag
	if value == "" {
		value = viper.GetString(key.QualityDefault)
	}

	target, err := quality.ParseTarget(value)
	if err != nil {
		return quality.Target{}, err
	}

	if flag != "" || !target.IsAuto() || src.Kind != source.Legacy || len(src.LegacyFormats) < 2 {
		return target, nil
	}

	options := lo.Map(src.LegacyFormats, func(format source.LegacyFormat, _ int) string {
		return fmt.Sprintf("%dp (itag %s)", format.Height, format.Itag)
	})

	var picked string
	err = survey.AskOne(&survey.Select{
		Message: "Quality",
		Options: options,
	}, &picked)
	if err != nil {
		return quality.Target{}, err
	}

	index := lo.IndexOf(options, picked)
	return quality.Dimension(src.LegacyFormats[index].Height), nil
}

// loadSubtitles parses a subtitle file into cues. A directory is searched
// for the best fuzzy match against the video title.
func loadSubtitles(path, title string) ([]subtitle.Cue, error) {
	if path == "" {
		return nil, nil
	}

	fs := filesystem.API()
	stat, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("subtitles: %w", err)
	}

	if stat.IsDir() {
		matched, err := matchSubtitleFile(path, title)
		if err != nil {
			return nil, err
		}
		path = matched
	}

	contents, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("subtitles: %w", err)
	}

	return subtitle.Parse(string(contents), strings.TrimPrefix(filepath.Ext(path), "."))
}

// matchSubtitleFile picks the subtitle file in dir whose name is the best
// fuzzy match for the video title.
func matchSubtitleFile(dir, title string) (string, error) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("subtitles: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".srt", ".vtt":
			candidates = append(candidates, entry.Name())
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no subtitle files in %s", dir)
	}

	ranked := fuzzy.RankFindNormalizedFold(title, candidates)
	if len(ranked) == 0 {
		// Nothing resembles the title; fall back to the first file.
		return filepath.Join(dir, candidates[0]), nil
	}

	best := lo.MinBy(ranked, func(a, b fuzzy.Rank) bool {
		return a.Distance < b.Distance
	})
	return filepath.Join(dir, best.Target), nil
}

// runSummary is the machine-readable session summary printed by --json.
type runSummary struct {
	VideoID           string  `json:"video_id"`
	Title             string  `json:"title"`
	Kind              string  `json:"kind"`
	State             string  `json:"state"`
	PositionSeconds   float64 `json:"position_seconds"`
	DurationSeconds   float64 `json:"duration_seconds"`
	WatchedPercentage float64 `json:"watched_percentage"`
	Error             string  `json:"error,omitempty"`
}

func printSummary(cmd *cobra.Command, src source.Source, controller *session.Controller, position, duration float64) {
	summary := runSummary{
		VideoID:         src.VideoID,
		Title:           src.Title,
		Kind:            src.Kind.String(),
		State:           controller.State().String(),
		PositionSeconds: position,
		DurationSeconds: duration,
	}
	if duration > 0 {
		summary.WatchedPercentage = position / duration * 100
	}
	if err := controller.Err(); err != nil {
		summary.Error = err.Error()
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	lo.Must0(encoder.Encode(summary))
}
