package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "text-embedding-004"

	defaultGeminiMaxTokens = 2048
)

// geminiModelLimits maps embedding models to their input token limits
var geminiModelLimits = map[string]int{
	"text-embedding-004":   2048,
	"gemini-embedding-001": 2048,
	"embedding-001":        2048,
}

// GeminiProvider uses the Gemini API to embed text.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int
}

// GeminiConfig provides configuration options for the Gemini embedding provider
type GeminiConfig struct {
	APIKey string
	Model  string
	// Dimensions truncates the returned embeddings; zero keeps the model default.
	Dimensions int
}

// NewGeminiProvider creates an embedding provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("Gemini API key is required")
		}
	}
	if config.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must be non-negative, got %d", config.Dimensions)
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model, dimensions: config.Dimensions}, nil
}

// Client exposes the underlying client so a token counter can share it
func (p *GeminiProvider) Client() *genai.Client {
	return p.client
}

// Model returns the embedding model name
func (p *GeminiProvider) Model() string {
	return p.model
}

func (p *GeminiProvider) embedConfig() *genai.EmbedContentConfig {
	if p.dimensions == 0 {
		return nil
	}
	dims := int32(p.dimensions)
	return &genai.EmbedContentConfig{OutputDimensionality: &dims}
}

// EmbedText embeds a single text
func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedTexts embeds several texts in one request. Results follow input order.
func (p *GeminiProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(text)...)
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, p.embedConfig())
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned by Gemini for input %d", i)
		}
		out[i] = toFloat64(e.Values)
	}
	return out, nil
}

// toFloat64 widens Gemini's float32 values
func toFloat64(vs []float32) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// GetMaxTokens returns the input token limit of the configured model
func (p *GeminiProvider) GetMaxTokens() int {
	if limit, ok := geminiModelLimits[p.model]; ok {
		return limit
	}
	return defaultGeminiMaxTokens
}

// Close is a no-op; the genai client holds no releasable resources.
func (p *GeminiProvider) Close() {}
