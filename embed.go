package simfunc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/botirk38/simfunc/chunker"
	"github.com/botirk38/simfunc/types"
	"gonum.org/v1/gonum/floats"
)

// Embed returns the embedding of text. Text longer than the provider limit is
// chunked and the chunk embeddings are averaged, weighted by token count.
func (s *Scorer) Embed(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := s.embedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// countTokens returns 0 when no counter is configured, leaving length checks
// to the provider.
func (s *Scorer) countTokens(ctx context.Context, text string) (int, error) {
	if s.counter == nil {
		return 0, nil
	}
	n, err := s.counter.CountTokens(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return n, nil
}

func (s *Scorer) embedChunked(ctx context.Context, text string, tokens int) ([]float64, error) {
	if s.chunker == nil {
		return nil, fmt.Errorf("%w: %d tokens, limit %d", ErrInputTooLong, tokens, s.provider.GetMaxTokens())
	}

	chunks, err := s.chunker.ChunkText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk text: %w", err)
	}
	slog.Debug("embedding chunked text", "tokens", tokens, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	return pool(embeddings, chunker.Weights(chunks))
}

// embedTexts asks the provider for several embeddings, in one request when
// it supports batching.
func (s *Scorer) embedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if batcher, ok := s.provider.(types.BatchEmbedder); ok && len(texts) > 1 {
		out, err := batcher.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(out) != len(texts) {
			return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(out), len(texts))
		}
		return out, nil
	}

	out := make([][]float64, len(texts))
	for i, t := range texts {
		embedding, err := s.provider.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = embedding
	}
	return out, nil
}

// pool returns the weighted mean of equal-width embeddings.
func pool(embeddings [][]float64, weights []float64) ([]float64, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings to pool")
	}

	if len(weights) != len(embeddings) {
		return nil, fmt.Errorf("got %d weights for %d embeddings", len(weights), len(embeddings))
	}

	out := make([]float64, len(embeddings[0]))
	for i, e := range embeddings {
		if len(e) != len(out) {
			return nil, fmt.Errorf("chunk %d embedding has width %d, want %d", i, len(e), len(out))
		}
		floats.AddScaled(out, weights[i], e)
	}
	return out, nil
}

// embedAll embeds every text, embedding each distinct text once. Cached and
// over-long texts are resolved individually; the rest go to the provider in
// one batch when it supports batching.
func (s *Scorer) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}

	resolved := make(map[string][]float64, len(texts))
	var pending []string

	for _, text := range texts {
		if text == "" {
			return nil, ErrEmptyText
		}
		if _, seen := resolved[text]; seen {
			continue
		}
		resolved[text] = nil

		if s.cache != nil {
			if embedding, ok := s.cache.Get(text); ok {
				resolved[text] = embedding
				continue
			}
		}

		tokens, err := s.countTokens(ctx, text)
		if err != nil {
			return nil, err
		}
		if tokens > s.provider.GetMaxTokens() {
			embedding, err := s.embedChunked(ctx, text, tokens)
			if err != nil {
				return nil, err
			}
			resolved[text] = embedding
			if s.cache != nil {
				s.cache.Set(text, embedding)
			}
			continue
		}
		pending = append(pending, text)
	}

	if len(pending) > 0 {
		embeddings, err := s.embedTexts(ctx, pending)
		if err != nil {
			return nil, err
		}
		for i, text := range pending {
			resolved[text] = embeddings[i]
			if s.cache != nil {
				s.cache.Set(text, embeddings[i])
			}
		}
	}

	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = resolved[text]
	}
	return out, nil
}
