package simfunc

import "context"

// ScoreResult holds the result of an async Similarity operation.
type ScoreResult struct {
	Score float64
	Error error
}

// SimilarityAsync scores two texts asynchronously.
// Returns a channel that will receive the result when complete.
func (s *Scorer) SimilarityAsync(ctx context.Context, a, b string) <-chan ScoreResult {
	resultCh := make(chan ScoreResult, 1)
	go func() {
		defer close(resultCh)
		score, err := s.Similarity(ctx, a, b)
		resultCh <- ScoreResult{Score: score, Error: err}
	}()
	return resultCh
}

// BatchResult holds the result of an async ScoreBatch operation.
type BatchResult struct {
	Scores []float64
	Error  error
}

// ScoreBatchAsync scores pairs asynchronously.
// Returns a channel that will receive the result when complete.
func (s *Scorer) ScoreBatchAsync(ctx context.Context, pairs []Pair) <-chan BatchResult {
	resultCh := make(chan BatchResult, 1)
	go func() {
		defer close(resultCh)
		scores, err := s.ScoreBatch(ctx, pairs)
		resultCh <- BatchResult{Scores: scores, Error: err}
	}()
	return resultCh
}

// RankResult holds the result of an async Rank operation.
type RankResult struct {
	Matches []Match
	Error   error
}

// RankAsync ranks candidates asynchronously.
// Returns a channel that will receive the result when complete.
func (s *Scorer) RankAsync(ctx context.Context, query string, candidates []string, n int) <-chan RankResult {
	resultCh := make(chan RankResult, 1)
	go func() {
		defer close(resultCh)
		matches, err := s.Rank(ctx, query, candidates, n)
		resultCh <- RankResult{Matches: matches, Error: err}
	}()
	return resultCh
}

// LookupResult holds the result of an async Lookup operation.
type LookupResult struct {
	Match *Match
	Error error
}

// LookupAsync performs a threshold lookup asynchronously.
// Returns a channel that will receive the result when complete.
func (s *Scorer) LookupAsync(ctx context.Context, query string, candidates []string, threshold float64) <-chan LookupResult {
	resultCh := make(chan LookupResult, 1)
	go func() {
		defer close(resultCh)
		match, err := s.Lookup(ctx, query, candidates, threshold)
		resultCh <- LookupResult{Match: match, Error: err}
	}()
	return resultCh
}

// SaveCheckpointAsync stores the current function asynchronously.
// Returns a channel that will receive an error or nil when complete.
func (s *Scorer) SaveCheckpointAsync(ctx context.Context, name string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- s.SaveCheckpoint(ctx, name)
	}()
	return errCh
}
