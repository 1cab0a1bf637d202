// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tubeplay-cli/tubeplay/color"
	"github.com/tubeplay-cli/tubeplay/constant"
	"github.com/tubeplay-cli/tubeplay/key"
	"github.com/tubeplay-cli/tubeplay/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Tubeplay + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.QualityDefault, "auto", "Default playback quality.\nEither \"auto\" (the engine's adaptive bitrate logic decides)\nor a pixel dimension such as 1080 or 720")
	register(key.PlaybackSkipInterval, 5, "Seconds to seek on small rewind/fast-forward.\nLarge seeks use double this value, scaled by the playback rate")
	register(key.PlaybackRateInterval, 0.25, "Step between selectable playback rates")
	register(key.PlaybackRateMax, 3.0, "Maximum selectable playback rate")
	register(key.PlaybackScrollMode, "volume", "Mouse wheel behavior over the player surface.\nAvailable options are: volume, seek, rate, none\nHolding Ctrl (Cmd on macOS) always selects rate")
	register(key.PlaybackAutoplay, true, "Start playback as soon as the source loads.\nWhen disabled the session comes up paused")
	register(key.SubtitlesEnabledByDefault, false, "Enable the first caption track as soon as a video loads")
	register(key.SubtitlesCustomEnabled, true, "Display locally parsed subtitle cues when a subtitle file was uploaded")
	register(key.SponsorEnable, true, "Enable sponsor segment skipping (SponsorBlock)")
	register(key.SponsorShowToast, true, "Show a transient notice when a segment is skipped")
	register(key.SponsorAPIHost, "https://sponsor.ajay.app", "Base URL of the sponsor segment API")
	register(key.SponsorCategorySponsor, "skip", "Policy for \"sponsor\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategorySelfPromo, "mark", "Policy for \"selfpromo\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryInteraction, "mark", "Policy for \"interaction\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryIntro, "none", "Policy for \"intro\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryOutro, "none", "Policy for \"outro\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryPreview, "none", "Policy for \"preview\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryMusicOfftopic, "none", "Policy for \"music_offtopic\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.SponsorCategoryFiller, "none", "Policy for \"filler\" segments.\nAvailable options are: skip, prompt, mark, none")
	register(key.ScreenshotEnable, true, "Enable the screenshot command and shortcut")
	register(key.ScreenshotFormat, "png", "Captured frame encoding.\nAvailable options are: png, jpg, webp")
	register(key.ScreenshotQuality, 90, "Captured frame encoding quality (1-100, lossy formats only)")
	register(key.ScreenshotAskPath, false, "Ask for a destination path instead of using the screenshots directory")
	register(key.HistorySaveOnWatch, true, "Persist playback position on teardown for resume")
	register(key.StatsShow, false, "Show the live playback statistics overlay")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
