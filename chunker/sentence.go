package chunker

import (
	"fmt"
	"strings"
	"unicode"
)

// SentenceChunker packs consecutive sentences into chunks of at most
// ChunkSize tokens. A sentence longer than ChunkSize is split into
// overlapping windows on its own.
type SentenceChunker struct {
	codec
	config ChunkConfig
}

// NewSentenceChunker creates a SentenceChunker with the given configuration.
func NewSentenceChunker(config ChunkConfig) (*SentenceChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}

	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &SentenceChunker{codec: c, config: config}, nil
}

// splitSentences cuts text after '.', '!' or '?' followed by whitespace, and
// at blank lines. Whitespace stays with the preceding sentence so the pieces
// concatenate back to the input.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	prev := rune(0)
	inGap := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if inGap && !space {
			sentences = append(sentences, text[start:i])
			start = i
			inGap = false
		}
		if !inGap && space && (prev == '.' || prev == '!' || prev == '?' || (r == '\n' && prev == '\n')) {
			inGap = true
		}
		prev = r
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// ChunkText splits the text at sentence boundaries. Token positions are
// counted per sentence, so they can drift slightly from an encoding of the
// whole text.
func (c *SentenceChunker) ChunkText(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	var (
		chunks  []Chunk
		current strings.Builder
		start   int
		offset  int
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Text: current.String(), StartToken: start, EndToken: offset})
		current.Reset()
		start = offset
	}

	for _, sentence := range splitSentences(text) {
		tokens, err := c.encode(sentence)
		if err != nil {
			return nil, err
		}
		n := len(tokens)

		if n > c.config.ChunkSize {
			flush()
			windows, err := c.windows(tokens, c.config.ChunkSize, c.config.ChunkSize-c.config.ChunkOverlap, offset)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, windows...)
			offset += n
			start = offset
			continue
		}

		if offset-start+n > c.config.ChunkSize {
			flush()
		}
		current.WriteString(sentence)
		offset += n
	}
	flush()

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}
