// Package sponsor implements sponsor segment skipping: per-category skip
// policies, the auto-skip decision for the playback clock, seek bar markers
// and transient skip notices.
package sponsor

import (
	"github.com/spf13/viper"

	"github.com/tubeplay-cli/tubeplay/key"
)

// Category is a sponsor segment category as labelled by the segment database.
type Category string

const (
	CategorySponsor       Category = "sponsor"
	CategorySelfPromo     Category = "selfpromo"
	CategoryInteraction   Category = "interaction"
	CategoryIntro         Category = "intro"
	CategoryOutro         Category = "outro"
	CategoryPreview       Category = "preview"
	CategoryMusicOfftopic Category = "music_offtopic"
	CategoryFiller        Category = "filler"
)

// Categories lists every known category in a stable order.
var Categories = []Category{
	CategorySponsor,
	CategorySelfPromo,
	CategoryInteraction,
	CategoryIntro,
	CategoryOutro,
	CategoryPreview,
	CategoryMusicOfftopic,
	CategoryFiller,
}

var categoryTitles = map[Category]string{
	CategorySponsor:       "Sponsor",
	CategorySelfPromo:     "Self Promotion",
	CategoryInteraction:   "Interaction Reminder",
	CategoryIntro:         "Intro",
	CategoryOutro:         "Outro",
	CategoryPreview:       "Preview",
	CategoryMusicOfftopic: "Non-Music Section",
	CategoryFiller:        "Filler",
}

// Title returns a human readable name for the category.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// Action is the configured handling for a category.
type Action string

const (
	// ActionSkip jumps over the segment automatically.
	ActionSkip Action = "skip"
	// ActionPrompt marks the segment and asks before skipping.
	ActionPrompt Action = "prompt"
	// ActionMark only shows the segment on the seek bar.
	ActionMark Action = "mark"
	// ActionNone ignores the segment entirely.
	ActionNone Action = "none"
)

// Segment is a single labelled time range within a video.
type Segment struct {
	UUID      string
	Category  Category
	StartTime float64
	EndTime   float64
}

// Policy is the resolved per-category configuration for one session.
type Policy struct {
	// AutoSkip holds the categories that are jumped over automatically.
	AutoSkip map[Category]bool

	// Prompt holds the categories that ask before skipping.
	Prompt map[Category]bool

	// SeekBar lists every category that is at least marked, in the order
	// markers should be requested from the segment API.
	SeekBar []Category

	// ShowToast enables the transient skipped-segment notice.
	ShowToast bool
}

var categoryKeys = map[Category]string{
	CategorySponsor:       key.SponsorCategorySponsor,
	CategorySelfPromo:     key.SponsorCategorySelfPromo,
	CategoryInteraction:   key.SponsorCategoryInteraction,
	CategoryIntro:         key.SponsorCategoryIntro,
	CategoryOutro:         key.SponsorCategoryOutro,
	CategoryPreview:       key.SponsorCategoryPreview,
	CategoryMusicOfftopic: key.SponsorCategoryMusicOfftopic,
	CategoryFiller:        key.SponsorCategoryFiller,
}

// PolicyFromConfig resolves the active policy from configuration. A disabled
// sponsor integration yields the zero policy, which skips and marks nothing.
func PolicyFromConfig() Policy {
	if !viper.GetBool(key.SponsorEnable) {
		return Policy{}
	}

	policy := Policy{
		AutoSkip:  make(map[Category]bool),
		Prompt:    make(map[Category]bool),
		ShowToast: viper.GetBool(key.SponsorShowToast),
	}

	for _, category := range Categories {
		switch Action(viper.GetString(categoryKeys[category])) {
		case ActionSkip:
			policy.AutoSkip[category] = true
			policy.SeekBar = append(policy.SeekBar, category)
		case ActionPrompt:
			policy.Prompt[category] = true
			policy.SeekBar = append(policy.SeekBar, category)
		case ActionMark:
			policy.SeekBar = append(policy.SeekBar, category)
		}
	}

	return policy
}
