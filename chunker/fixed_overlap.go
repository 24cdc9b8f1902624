package chunker

import "fmt"

// FixedOverlapChunker slides a window of ChunkSize tokens over the text,
// advancing by ChunkSize-ChunkOverlap.
type FixedOverlapChunker struct {
	codec
	config ChunkConfig
}

// NewFixedOverlapChunker creates a new FixedOverlapChunker with the given configuration.
func NewFixedOverlapChunker(config ChunkConfig) (*FixedOverlapChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}

	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &FixedOverlapChunker{codec: c, config: config}, nil
}

// ChunkText splits the text into overlapping token windows. Text that fits in
// one window is returned unchanged as a single chunk.
func (c *FixedOverlapChunker) ChunkText(text string) ([]Chunk, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	tokens, err := c.encode(text)
	if err != nil {
		return nil, err
	}

	if len(tokens) <= c.config.ChunkSize {
		return []Chunk{{Text: text, EndToken: len(tokens)}}, nil
	}

	chunks, err := c.windows(tokens, c.config.ChunkSize, c.config.ChunkSize-c.config.ChunkOverlap, 0)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}
