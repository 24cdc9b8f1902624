package tokenizer

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiTokenizer counts tokens with the Gemini CountTokens endpoint
type GeminiTokenizer struct {
	client *genai.Client
	model  string
}

// NewGeminiTokenizer creates a new GeminiTokenizer with the provided client and model
func NewGeminiTokenizer(client *genai.Client, model string) *GeminiTokenizer {
	return &GeminiTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens counts tokens in text. This makes an API call.
func (t *GeminiTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("gemini client is required for token counting")
	}

	if t.model == "" {
		return 0, fmt.Errorf("gemini model is required for token counting")
	}

	result, err := t.client.Models.CountTokens(ctx, t.model, genai.Text(text), nil)
	if err != nil {
		return 0, fmt.Errorf("gemini token counting failed: %w", err)
	}

	return int(result.TotalTokens), nil
}
