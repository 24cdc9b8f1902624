// Package providers creates embedding providers by type.
package providers

import (
	"context"
	"errors"

	"github.com/botirk38/simfunc/providers/gemini"
	"github.com/botirk38/simfunc/providers/openai"
	"github.com/botirk38/simfunc/types"
)

var ErrUnsupportedProvider = errors.New("unsupported provider type")

// Config is the provider-neutral configuration used by NewProvider
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config openai.OpenAIConfig) (types.EmbeddingProvider, error) {
	return openai.NewOpenAIProvider(config)
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config gemini.GeminiConfig) (types.EmbeddingProvider, error) {
	return gemini.NewGeminiProvider(ctx, config)
}

// NewProvider creates a provider of the given type
func NewProvider(ctx context.Context, providerType types.ProviderType, config Config) (types.EmbeddingProvider, error) {
	switch providerType {
	case types.ProviderOpenAI:
		return NewOpenAIProvider(openai.OpenAIConfig{
			APIKey:     config.APIKey,
			BaseURL:    config.BaseURL,
			Model:      config.Model,
			Dimensions: config.Dimensions,
		})
	case types.ProviderGemini:
		return NewGeminiProvider(ctx, gemini.GeminiConfig{
			APIKey:     config.APIKey,
			Model:      config.Model,
			Dimensions: config.Dimensions,
		})
	default:
		return nil, ErrUnsupportedProvider
	}
}
