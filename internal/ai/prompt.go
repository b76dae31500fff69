package ai

import (
	"fmt"
	"strings"

	"memorybook/internal/models"
)

func classifyPrompt() string {
	themes := make([]string, len(models.Themes))
	for i, t := range models.Themes {
		themes[i] = fmt.Sprintf("%q", string(t))
	}

	return `Analyze these baby photos and group them into meaningful clusters based on activity, setting, or moment type.
For each cluster, provide:
- A short, sweet title (e.g., "First Steps", "Bath Time Fun", "Sleepy Moments")
- A heartfelt description that a parent would love to read (2-3 sentences)
- A theme from: ` + strings.Join(themes, ", ") + `

Respond in this exact JSON format:
{
  "clusters": [
    {
      "photoIndexes": [0, 2],
      "title": "Title Here",
      "description": "Description here",
      "theme": "milestone"
    }
  ]
}

Photo indexes are zero-based in the order the photos were given.
Make sure every photo is included in exactly one cluster.`
}

func backgroundPrompt(theme models.Theme, title string) string {
	return fmt.Sprintf(`Generate an image: A beautiful, soft, and subtle background for a baby memory book page.
Theme: %s
Page title: %s
Style: %s

Requirements:
- Very soft, muted pastel colors
- Dreamy, ethereal watercolor or soft gradient style
- Abstract or semi-abstract design
- NO text, NO words, NO letters anywhere in the image
- Should work as a background (not too busy)
- Light enough that text and photos can be placed on top
- Landscape orientation, suitable for a book page`, theme, title, theme.PromptStyle())
}
