package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"memorybook/internal/models"
)

type GeminiOptions struct {
	APIKey          string
	ClassifyModel   string
	BackgroundModel string
}

// GeminiClient talks to the Gemini API. A client built without an API key is
// valid and reports ErrUpstreamUnavailable for every call.
type GeminiClient struct {
	client          *genai.Client
	classifyModel   string
	backgroundModel string
	log             zerolog.Logger
}

func NewGeminiClient(ctx context.Context, opts GeminiOptions, log zerolog.Logger) (*GeminiClient, error) {
	g := &GeminiClient{
		classifyModel:   opts.ClassifyModel,
		backgroundModel: opts.BackgroundModel,
		log:             log.With().Str("component", "gemini").Logger(),
	}
	if opts.APIKey == "" {
		g.log.Warn().Msg("no api key configured, ai calls will fall back")
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Classify sends the whole batch in one request and returns the raw groups.
func (g *GeminiClient) Classify(ctx context.Context, images []Image) ([]Group, error) {
	if g.client == nil {
		return nil, ErrUpstreamUnavailable
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(classifyPrompt()))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIME))
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.7)),
		TopP:             genai.Ptr(float32(0.95)),
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.classifyModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return nil, upstream("classify", err)
	}

	text := replyText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty classify reply", ErrUpstreamUnavailable)
	}
	g.log.Debug().Int("photos", len(images)).Str("reply", text).Msg("classify reply")

	return ParseGroups(text)
}

// GenerateBackground asks the image model for a page background and returns
// the encoded image with its content type.
func (g *GeminiClient) GenerateBackground(ctx context.Context, theme models.Theme, title, description string) ([]byte, string, error) {
	if g.client == nil {
		return nil, "", ErrUpstreamUnavailable
	}

	prompt := backgroundPrompt(theme, title)
	if description != "" {
		prompt += "\nMood: " + description
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"image", "text"},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.backgroundModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return nil, "", upstream("background", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", fmt.Errorf("%w: empty background reply", ErrUpstreamUnavailable)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", fmt.Errorf("%w: no image in background reply", ErrUpstreamUnavailable)
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

func upstream(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out", ErrUpstreamUnavailable, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
}
