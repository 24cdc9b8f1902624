// Package simfunc scores pairs of vectors, or of texts through an embedding
// provider, with configurable similarity functions, including a learned
// linear similarity over combinations of the two inputs.
package simfunc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/botirk38/simfunc/chunker"
	"github.com/botirk38/simfunc/options"
	"github.com/botirk38/simfunc/similarity"
	"github.com/botirk38/simfunc/types"
	"gonum.org/v1/gonum/mat"
)

// Scorer applies a similarity function to vectors or embedded text.
type Scorer struct {
	mu sync.RWMutex
	fn similarity.Function

	provider types.EmbeddingProvider
	counter  types.TokenCounter
	chunker  chunker.Chunker
	cache    *embeddingCache
	store    types.CheckpointStore
}

// Match represents a ranked candidate with its similarity score.
type Match struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Pair is two texts to score against each other.
type Pair struct {
	A string
	B string
}

// New creates a Scorer with functional options.
func New(opts ...options.Option) (*Scorer, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := NewScorer(cfg.Function, cfg.Provider)
	if err != nil {
		return nil, err
	}
	s.counter = cfg.Counter
	s.chunker = cfg.Chunker
	s.store = cfg.Store

	// The chunker counts with the same encoding it splits with.
	if s.counter == nil && s.chunker != nil {
		s.counter = chunkerCounter{s.chunker}
	}

	if cfg.EmbeddingCache != nil {
		cache, err := newEmbeddingCache(CacheConfig{
			MaxCost: cfg.EmbeddingCache.MaxCost,
			TTL:     cfg.EmbeddingCache.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// NewScorer creates a Scorer from a similarity function and an optional
// embedding provider. Without a provider only vector scoring is available.
func NewScorer(fn similarity.Function, provider types.EmbeddingProvider) (*Scorer, error) {
	if fn == nil {
		return nil, errors.New("similarity function cannot be nil")
	}
	return &Scorer{fn: fn, provider: provider}, nil
}

// chunkerCounter adapts a Chunker to TokenCounter.
type chunkerCounter struct {
	c chunker.Chunker
}

func (cc chunkerCounter) CountTokens(_ context.Context, text string) (int, error) {
	return cc.c.CountTokens(text)
}

// Function returns the similarity function currently in use.
func (s *Scorer) Function() similarity.Function {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fn
}

// SetFunction replaces the similarity function.
func (s *Scorer) SetFunction(fn similarity.Function) error {
	if fn == nil {
		return errors.New("similarity function cannot be nil")
	}
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
	return nil
}

// CacheStats reports embedding cache hits and misses. It is zero when no
// cache is configured.
func (s *Scorer) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.Stats()
}

// SimilarityVectors scores two vectors directly.
func (s *Scorer) SimilarityVectors(x, y []float64) (float64, error) {
	return s.Function().Similarity(x, y)
}

// Similarity embeds both texts and scores them.
func (s *Scorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	embeddings, err := s.embedAll(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return s.SimilarityVectors(embeddings[0], embeddings[1])
}

// ScoreBatch scores every pair with one batched forward pass.
func (s *Scorer) ScoreBatch(ctx context.Context, pairs []Pair) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, 2*len(pairs))
	for _, p := range pairs {
		texts = append(texts, p.A, p.B)
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	xs := make([][]float64, len(pairs))
	ys := make([][]float64, len(pairs))
	for i := range pairs {
		xs[i] = embeddings[2*i]
		ys[i] = embeddings[2*i+1]
	}
	return s.ScoreVectors(xs, ys)
}

// ScoreVectors scores xs[i] against ys[i] for every row in one batch.
func (s *Scorer) ScoreVectors(xs, ys [][]float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("got %d left vectors and %d right vectors", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, nil
	}

	x, err := stack(xs)
	if err != nil {
		return nil, err
	}
	y, err := stack(ys)
	if err != nil {
		return nil, err
	}

	scores, err := s.Function().SimilarityBatch(x, y)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, scores), nil
}

// stack packs equal-width rows into a matrix.
func stack(rows [][]float64) (*mat.Dense, error) {
	width := len(rows[0])
	if width == 0 {
		return nil, errors.New("cannot score empty vectors")
	}
	data := make([]float64, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("row %d has width %d, want %d", i, len(r), width)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), width, data), nil
}

// scoreCandidates scores the query against every candidate.
func (s *Scorer) scoreCandidates(ctx context.Context, query string, candidates []string) ([]Match, error) {
	embeddings, err := s.embedAll(ctx, append([]string{query}, candidates...))
	if err != nil {
		return nil, err
	}

	xs := make([][]float64, len(candidates))
	for i := range xs {
		xs[i] = embeddings[0]
	}
	scores, err := s.ScoreVectors(xs, embeddings[1:])
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = Match{Index: i, Text: c, Score: scores[i]}
	}
	return matches, nil
}

// Rank returns up to n candidates sorted by descending similarity to query.
func (s *Scorer) Rank(ctx context.Context, query string, candidates []string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, ErrInvalidCount
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	matches, err := s.scoreCandidates(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > n {
		return matches[:n], nil
	}
	return matches, nil
}

// Lookup returns the best candidate whose similarity >= threshold, or nil.
func (s *Scorer) Lookup(ctx context.Context, query string, candidates []string, threshold float64) (*Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	matches, err := s.scoreCandidates(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	var best *Match
	for i := range matches {
		if matches[i].Score < threshold {
			continue
		}
		if best == nil || matches[i].Score > best.Score {
			best = &matches[i]
		}
	}
	return best, nil
}

// SaveCheckpoint stores the current function under name.
func (s *Scorer) SaveCheckpoint(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}

	cp, err := similarity.Snapshot(name, s.Function())
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, cp); err != nil {
		return err
	}

	slog.Debug("checkpoint written", "name", name, "id", cp.ID)
	return nil
}

// LoadCheckpoint replaces the current function with the named checkpoint.
func (s *Scorer) LoadCheckpoint(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}

	cp, found, err := s.store.Load(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrCheckpointNotFound, name)
	}

	fn, err := similarity.Restore(cp)
	if err != nil {
		return fmt.Errorf("failed to restore checkpoint %s: %w", name, err)
	}

	slog.Debug("checkpoint restored", "name", name, "id", cp.ID)
	return s.SetFunction(fn)
}

// Close releases the provider, cache and store.
func (s *Scorer) Close() error {
	if s.provider != nil {
		s.provider.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
