package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTheme(t *testing.T) {
	cases := map[string]Theme{
		"adventure":   ThemeAdventure,
		" Serene ":    ThemeSerene,
		"MILESTONE":   ThemeMilestone,
		"":            ThemeLove,
		"spooky":      ThemeLove,
		"love":        ThemeLove,
		"celebration": ThemeCelebration,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeTheme(raw), "raw=%q", raw)
	}
}

func TestThemesAreValidAndStyled(t *testing.T) {
	assert.Len(t, Themes, 10)
	for _, th := range Themes {
		assert.True(t, th.Valid())
		assert.NotEmpty(t, th.PromptStyle())
		assert.NotEmpty(t, th.Accent())
	}
	assert.False(t, Theme("unknown").Valid())
	assert.Equal(t, ThemeLove.PromptStyle(), Theme("unknown").PromptStyle())
}

func TestDraftFieldsApply(t *testing.T) {
	title := "Bath Time"
	theme := "nonsense"
	d := Draft{Title: "Old", Description: "keep", Theme: ThemeCozy}

	got := DraftFields{Title: &title, Theme: &theme}.Apply(d)

	assert.Equal(t, "Bath Time", got.Title)
	assert.Equal(t, "keep", got.Description)
	assert.Equal(t, ThemeLove, got.Theme)
	assert.Equal(t, "Old", d.Title)
}
