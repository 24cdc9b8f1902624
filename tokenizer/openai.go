// Package tokenizer counts tokens the way embedding models do, so scorers
// can tell when text has to be chunked before it is embedded.
package tokenizer

import (
	"context"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAITokenizer counts tokens locally with tiktoken
type OpenAITokenizer struct {
	codec tokenizer.Codec
}

// NewOpenAITokenizer creates a tokenizer using the cl100k_base encoding of
// OpenAI's embedding models
func NewOpenAITokenizer() (*OpenAITokenizer, error) {
	return NewOpenAITokenizerWithEncoding(tokenizer.Cl100kBase)
}

// NewOpenAITokenizerWithEncoding creates a tokenizer for a specific tiktoken encoding
func NewOpenAITokenizerWithEncoding(encoding tokenizer.Encoding) (*OpenAITokenizer, error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encoding, err)
	}
	return &OpenAITokenizer{codec: codec}, nil
}

// CountTokens counts tokens in text. This is a local operation.
func (t *OpenAITokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
