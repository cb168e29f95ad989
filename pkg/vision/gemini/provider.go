package gemini

import (
	"context"
	"fmt"
	"strings"

	"chart-coach-be/internal/constant"
	"chart-coach-be/internal/entity"
	"chart-coach-be/pkg/vision"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ vision.Analyzer = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Analyze(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.MimeType),
		genai.NewPartFromText(constant.CoachPrompt(mode)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(constant.CoachSystemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty analysis")
	}
	return text, nil
}
