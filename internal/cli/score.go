package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/botirk38/simfunc"
	"github.com/botirk38/simfunc/chunker"
	"github.com/botirk38/simfunc/options"
	"github.com/botirk38/simfunc/similarity"
	"github.com/spf13/cobra"
)

type scoreOutput struct {
	Score float64 `json:"score"`
}

func newScoreCmd(a *app) *cobra.Command {
	var (
		x, y         string
		textA, textB string
		checkpoint   string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score two vectors or two texts",
		Long: `Score two vectors given as JSON arrays, or two texts embedded with the
configured provider.

The similarity function comes from --checkpoint when given, otherwise from
the similarity section of --config (dot product when absent).

Examples:
  simfunc score --x '[1,2,3]' --y '[4,5,6]'
  simfunc score --config model.yaml --checkpoint tuned --text-a cat --text-b kitten`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vectors := x != "" || y != ""
			texts := textA != "" || textB != ""
			if vectors == texts {
				return errors.New("give either --x and --y or --text-a and --text-b")
			}

			ctx := cmd.Context()
			fn, err := a.function(ctx, checkpoint)
			if err != nil {
				return err
			}

			var score float64
			if vectors {
				score, err = scoreVectors(fn, x, y)
			} else {
				score, err = a.scoreTexts(ctx, fn, textA, textB)
			}
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), scoreOutput{Score: score}, fmt.Sprint(score))
		},
	}

	cmd.Flags().StringVar(&x, "x", "", "First vector as a JSON array")
	cmd.Flags().StringVar(&y, "y", "", "Second vector as a JSON array")
	cmd.Flags().StringVar(&textA, "text-a", "", "First text")
	cmd.Flags().StringVar(&textB, "text-b", "", "Second text")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Name of a stored checkpoint to score with")
	return cmd
}

// function returns the stored checkpoint's function, or the configured one.
func (a *app) function(ctx context.Context, checkpoint string) (similarity.Function, error) {
	if checkpoint == "" {
		return similarity.FromParams(a.config.similarity.Duplicate())
	}

	store, err := a.config.openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	cp, found, err := store.Load(ctx, checkpoint)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", simfunc.ErrCheckpointNotFound, checkpoint)
	}
	return similarity.Restore(cp)
}

func parseVector(flag, raw string) ([]float64, error) {
	var v []float64
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON array of numbers: %w", flag, err)
	}
	return v, nil
}

func scoreVectors(fn similarity.Function, rawX, rawY string) (float64, error) {
	x, err := parseVector("x", rawX)
	if err != nil {
		return 0, err
	}
	y, err := parseVector("y", rawY)
	if err != nil {
		return 0, err
	}
	return fn.Similarity(x, y)
}

func (a *app) scoreTexts(ctx context.Context, fn similarity.Function, textA, textB string) (float64, error) {
	provider, err := a.config.newProvider(ctx)
	if err != nil {
		return 0, err
	}

	chunks := chunker.DefaultChunkConfig()
	chunks.MaxTokens = provider.GetMaxTokens()
	chunks.ChunkSize = min(chunks.ChunkSize, chunks.MaxTokens)

	scorer, err := simfunc.New(
		options.WithFunction(fn),
		options.WithCustomProvider(provider),
		options.WithChunking(chunks),
	)
	if err != nil {
		provider.Close()
		return 0, err
	}
	defer func() { _ = scorer.Close() }()

	return scorer.Similarity(ctx, textA, textB)
}
