package simfunc

import (
	"context"
	"testing"

	"github.com/botirk38/simfunc/options"
)

func TestAsyncOperations(t *testing.T) {
	ctx := context.Background()

	newScorer := func(t *testing.T) *Scorer {
		s, err := New(
			options.WithCustomProvider(newMockProvider()),
			options.WithLRUStore(10),
		)
		if err != nil {
			t.Fatalf("Failed to create scorer: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("SimilarityAsync", func(t *testing.T) {
		s := newScorer(t)

		result := <-s.SimilarityAsync(ctx, "hello", "hello")
		if result.Error != nil {
			t.Fatalf("SimilarityAsync failed: %v", result.Error)
		}
		if !almostEqual(result.Score, 1) {
			t.Errorf("Expected 1, got %f", result.Score)
		}
	})

	t.Run("ScoreBatchAsync", func(t *testing.T) {
		s := newScorer(t)

		result := <-s.ScoreBatchAsync(ctx, []Pair{{A: "hello", B: "world"}, {A: "test", B: "test"}})
		if result.Error != nil {
			t.Fatalf("ScoreBatchAsync failed: %v", result.Error)
		}
		if len(result.Scores) != 2 || !almostEqual(result.Scores[1], 1) {
			t.Errorf("Unexpected scores: %v", result.Scores)
		}
	})

	t.Run("RankAsync", func(t *testing.T) {
		s := newScorer(t)

		result := <-s.RankAsync(ctx, "hello", []string{"world", "hello"}, 1)
		if result.Error != nil {
			t.Fatalf("RankAsync failed: %v", result.Error)
		}
		if len(result.Matches) != 1 || result.Matches[0].Text != "hello" {
			t.Errorf("Unexpected matches: %+v", result.Matches)
		}
	})

	t.Run("RankAsyncError", func(t *testing.T) {
		s := newScorer(t)

		result := <-s.RankAsync(ctx, "hello", []string{"world"}, -1)
		if result.Error == nil {
			t.Error("Expected error for negative n")
		}
	})

	t.Run("LookupAsync", func(t *testing.T) {
		s := newScorer(t)

		result := <-s.LookupAsync(ctx, "hello", []string{"similar to hello"}, 0.9)
		if result.Error != nil {
			t.Fatalf("LookupAsync failed: %v", result.Error)
		}
		if result.Match == nil {
			t.Error("Expected a match")
		}
	})

	t.Run("SaveCheckpointAsync", func(t *testing.T) {
		s := newScorer(t)

		if err := <-s.SaveCheckpointAsync(ctx, "cosine"); err != nil {
			t.Fatalf("SaveCheckpointAsync failed: %v", err)
		}
		if err := s.LoadCheckpoint(ctx, "cosine"); err != nil {
			t.Errorf("Expected saved checkpoint to load, got %v", err)
		}
	})

	t.Run("ChannelsClose", func(t *testing.T) {
		s := newScorer(t)

		ch := s.SimilarityAsync(ctx, "hello", "world")
		<-ch
		if _, ok := <-ch; ok {
			t.Error("Expected channel to be closed after the result")
		}
	})

	t.Run("Concurrent", func(t *testing.T) {
		s := newScorer(t)

		chans := make([]<-chan ScoreResult, 20)
		for i := range chans {
			chans[i] = s.SimilarityAsync(ctx, "hello", "similar to hello")
		}
		for i, ch := range chans {
			if r := <-ch; r.Error != nil {
				t.Errorf("call %d failed: %v", i, r.Error)
			}
		}
	})
}
