package models

import "strings"

type Theme string

const (
	ThemeAdventure   Theme = "adventure"
	ThemeCozy        Theme = "cozy"
	ThemeCelebration Theme = "celebration"
	ThemeNature      Theme = "nature"
	ThemeFamily      Theme = "family"
	ThemeMilestone   Theme = "milestone"
	ThemePlayful     Theme = "playful"
	ThemeLove        Theme = "love"
	ThemeGrowth      Theme = "growth"
	ThemeSerene      Theme = "serene"
)

// DefaultTheme is used for any value outside the enumeration.
const DefaultTheme = ThemeLove

var Themes = []Theme{
	ThemeAdventure,
	ThemeCozy,
	ThemeCelebration,
	ThemeNature,
	ThemeFamily,
	ThemeMilestone,
	ThemePlayful,
	ThemeLove,
	ThemeGrowth,
	ThemeSerene,
}

func NormalizeTheme(raw string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t
	}
	return DefaultTheme
}

func (t Theme) Valid() bool {
	switch t {
	case ThemeAdventure, ThemeCozy, ThemeCelebration, ThemeNature, ThemeFamily,
		ThemeMilestone, ThemePlayful, ThemeLove, ThemeGrowth, ThemeSerene:
		return true
	default:
		return false
	}
}

// PromptStyle describes the artwork style used when generating a page background.
func (t Theme) PromptStyle() string {
	switch t {
	case ThemeAdventure:
		return "adventurous outdoor scenery with mountains, forests, soft watercolor style"
	case ThemeCozy:
		return "warm cozy interior, soft blankets, warm lighting, gentle pastel watercolor"
	case ThemeCelebration:
		return "festive confetti, balloons, sparkles, joyful pastel watercolor style"
	case ThemeNature:
		return "gentle nature scene, flowers, leaves, butterflies, soft botanical watercolor"
	case ThemeFamily:
		return "warm family home atmosphere, soft hearts, gentle embrace motifs, watercolor"
	case ThemeMilestone:
		return "celebratory stars, achievement ribbons, gentle golden accents, watercolor"
	case ThemePlayful:
		return "fun toys, colorful blocks, playful patterns, cheerful watercolor style"
	case ThemeGrowth:
		return "growing plants, seedlings, gentle green sprouts, nature watercolor"
	case ThemeSerene:
		return "calm clouds, peaceful sky, soft blue tones, dreamy watercolor style"
	default:
		return "soft hearts, gentle pink and red tones, romantic watercolor florals"
	}
}

// Accent is the page accent color as a hex string.
func (t Theme) Accent() string {
	switch t {
	case ThemeAdventure:
		return "#6B8E5A"
	case ThemeCozy:
		return "#C98B5E"
	case ThemeCelebration:
		return "#E0A43B"
	case ThemeNature:
		return "#7FA77A"
	case ThemeFamily:
		return "#D7897F"
	case ThemeMilestone:
		return "#C9A227"
	case ThemePlayful:
		return "#5FA8D3"
	case ThemeGrowth:
		return "#8DB86B"
	case ThemeSerene:
		return "#8BB2D9"
	default:
		return "#E58FA4"
	}
}
