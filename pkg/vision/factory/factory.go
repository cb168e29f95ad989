package factory

import (
	"context"
	"fmt"

	"chart-coach-be/pkg/vision"
	"chart-coach-be/pkg/vision/gemini"
	"chart-coach-be/pkg/vision/ollama"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

func NewAnalyzer(ctx context.Context, providerType, modelName, baseURL, apiKey string) (vision.Analyzer, error) {
	switch providerType {
	case ProviderGemini:
		p, err := gemini.NewGeminiProvider(ctx, apiKey, modelName)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if modelName == "" {
			return nil, fmt.Errorf("ollama vision provider needs a model name")
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", providerType)
	}
}
