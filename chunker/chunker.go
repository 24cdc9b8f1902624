// Package chunker splits text that is too long for an embedding model into
// token-bounded pieces. Scorers embed each piece and pool the results.
package chunker

// Chunker splits text into chunks and reports token counts with the same
// encoding it chunks with.
type Chunker interface {
	ChunkText(text string) ([]Chunk, error)
	CountTokens(text string) (int, error)
}

// ChunkConfig holds configuration for text chunking behavior.
type ChunkConfig struct {
	// MaxTokens is the provider limit above which text gets chunked.
	MaxTokens int

	// ChunkSize is the largest number of tokens in a single chunk.
	ChunkSize int

	// ChunkOverlap is the number of tokens shared by neighbouring windows.
	// Sentence chunking only applies it when a single sentence has to be split.
	ChunkOverlap int

	Strategy ChunkStrategy
}

// ChunkStrategy represents the chunking algorithm type.
type ChunkStrategy string

const (
	// FixedSizeOverlap slides a fixed token window over the text.
	FixedSizeOverlap ChunkStrategy = "fixed_overlap"

	// SentenceBoundary packs whole sentences into chunks.
	SentenceBoundary ChunkStrategy = "sentence"
)

// Chunk is one piece of the original text.
type Chunk struct {
	Text string

	// StartToken and EndToken delimit the chunk in the token stream of the
	// original text, end exclusive.
	StartToken int
	EndToken   int

	Index int
}

// Tokens returns the number of tokens covered by the chunk.
func (c Chunk) Tokens() int {
	return c.EndToken - c.StartToken
}

// DefaultChunkConfig returns the default chunking configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxTokens:    8191, // text-embedding-3-small
		ChunkSize:    512,
		ChunkOverlap: 50,
		Strategy:     FixedSizeOverlap,
	}
}

// Validate checks if the chunk configuration is valid.
func (c ChunkConfig) Validate() error {
	if c.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}

	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.ChunkSize > c.MaxTokens {
		return ErrChunkSizeExceedsMax
	}

	if c.ChunkOverlap < 0 {
		return ErrInvalidOverlap
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return ErrOverlapTooLarge
	}

	switch c.Strategy {
	case "", FixedSizeOverlap, SentenceBoundary:
		return nil
	default:
		return ErrUnknownStrategy
	}
}

// New creates the chunker selected by config.Strategy. An empty strategy
// means FixedSizeOverlap.
func New(config ChunkConfig) (Chunker, error) {
	if config.Strategy == SentenceBoundary {
		return NewSentenceChunker(config)
	}
	return NewFixedOverlapChunker(config)
}

// Weights returns each chunk's share of the total token count, for pooling
// chunk embeddings. Chunks without tokens share the weight equally.
func Weights(chunks []Chunk) []float64 {
	weights := make([]float64, len(chunks))
	total := 0
	for _, c := range chunks {
		total += c.Tokens()
	}
	for i, c := range chunks {
		if total == 0 {
			weights[i] = 1 / float64(len(chunks))
			continue
		}
		weights[i] = float64(c.Tokens()) / float64(total)
	}
	return weights
}
