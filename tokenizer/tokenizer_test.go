package tokenizer

import (
	"context"
	"strings"
	"testing"

	"github.com/botirk38/simfunc/types"
)

var (
	_ types.TokenCounter = (*OpenAITokenizer)(nil)
	_ types.TokenCounter = (*GeminiTokenizer)(nil)
)

func TestOpenAITokenizer_CountTokens(t *testing.T) {
	tok, err := NewOpenAITokenizer()
	if err != nil {
		t.Fatalf("failed to create tokenizer: %v", err)
	}
	ctx := context.Background()

	if n, err := tok.CountTokens(ctx, ""); err != nil || n != 0 {
		t.Errorf("CountTokens(\"\") = %d, %v; want 0", n, err)
	}

	short, _ := tok.CountTokens(ctx, "Hello, world!")
	if short < 2 || short > 5 {
		t.Errorf("CountTokens(short) = %d, want 2-5", short)
	}

	long, _ := tok.CountTokens(ctx, strings.Repeat("Hello, world! ", 100))
	if long <= short*50 {
		t.Errorf("CountTokens(long) = %d, expected it to grow with input", long)
	}
}

func TestGeminiTokenizer_Validation(t *testing.T) {
	ctx := context.Background()

	if n, err := NewGeminiTokenizer(nil, "m").CountTokens(ctx, ""); err != nil || n != 0 {
		t.Errorf("empty text should count 0 without a client, got %d, %v", n, err)
	}
	if _, err := NewGeminiTokenizer(nil, "m").CountTokens(ctx, "text"); err == nil {
		t.Error("expected error without client")
	}
}
