// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Quality - these keys govern representation selection and adaptive bitrate behavior.
const (
	QualityDefault = "quality.default"
)

// Playback Behavior - these keys configure seeking, playback rates, and gesture handling.
const (
	PlaybackSkipInterval = "playback.skip_interval"
	PlaybackRateInterval = "playback.rate_interval"
	PlaybackRateMax      = "playback.rate_max"
	PlaybackScrollMode   = "playback.scroll_mode"
	PlaybackAutoplay     = "playback.autoplay"
)

// Subtitles - these keys manage caption track defaults and locally parsed cue display.
const (
	SubtitlesEnabledByDefault = "subtitles.enabled_by_default"
	SubtitlesCustomEnabled    = "subtitles.custom_enabled"
)

// Sponsor Segment Skipping - these keys configure the per-category skip policies and notifications.
const (
	SponsorEnable    = "sponsor.enable"
	SponsorShowToast = "sponsor.show_toast"
	SponsorAPIHost   = "sponsor.api_host"

	SponsorCategorySponsor       = "sponsor.category.sponsor"
	SponsorCategorySelfPromo     = "sponsor.category.selfpromo"
	SponsorCategoryInteraction   = "sponsor.category.interaction"
	SponsorCategoryIntro         = "sponsor.category.intro"
	SponsorCategoryOutro         = "sponsor.category.outro"
	SponsorCategoryPreview       = "sponsor.category.preview"
	SponsorCategoryMusicOfftopic = "sponsor.category.music_offtopic"
	SponsorCategoryFiller        = "sponsor.category.filler"
)

// Screenshots - these keys control captured frame encoding and destination resolution.
const (
	ScreenshotEnable  = "screenshot.enable"
	ScreenshotFormat  = "screenshot.format"
	ScreenshotQuality = "screenshot.quality"
	ScreenshotAskPath = "screenshot.ask_path"
)

// History Tracking - these keys configure the persistence of playback position state.
const (
	HistorySaveOnWatch = "history.save_on_watch"
)

// Statistics - these keys govern the live playback statistics overlay.
const (
	StatsShow = "stats.show"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored = "cli.colored"
)
