package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Small
)

// openAIModelLimits maps embedding models to their input token limits
var openAIModelLimits = map[string]int{
	openai.EmbeddingModelTextEmbedding3Small: 8191,
	openai.EmbeddingModelTextEmbedding3Large: 8191,
	openai.EmbeddingModelTextEmbeddingAda002: 8191,
}

const defaultOpenAIMaxTokens = 8191

// OpenAIProvider uses OpenAI's API to embed text.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// OpenAIConfig provides configuration options for OpenAI embedding provider
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
	// Dimensions shortens the returned embeddings; zero keeps the model default.
	// Only text-embedding-3 models support it.
	Dimensions int
}

// NewOpenAIProvider creates an embedding provider for OpenAI.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
	}
	if config.Dimensions < 0 {
		return nil, fmt.Errorf("dimensions must be non-negative, got %d", config.Dimensions)
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, model: model, dimensions: config.Dimensions}, nil
}

func (p *OpenAIProvider) params(texts []string) openai.EmbeddingNewParams {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}
	return params
}

// EmbedText sends the embedding request to OpenAI.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedTexts embeds several texts in one request. Results follow input order.
func (p *OpenAIProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.Embeddings.New(ctx, p.params(texts))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("OpenAI returned embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, e := range out {
		if e == nil {
			return nil, fmt.Errorf("no embedding returned by OpenAI for input %d", i)
		}
	}
	return out, nil
}

// GetMaxTokens returns the input token limit of the configured model
func (p *OpenAIProvider) GetMaxTokens() int {
	if limit, ok := openAIModelLimits[p.model]; ok {
		return limit
	}
	return defaultOpenAIMaxTokens
}

func (p *OpenAIProvider) Close() {}
