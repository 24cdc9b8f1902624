package chunker

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// codec wraps the cl100k_base encoding used by OpenAI's embedding models.
type codec struct {
	encoding tokenizer.Codec
}

func newCodec() (codec, error) {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return codec{}, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return codec{encoding: enc}, nil
}

func (c codec) encode(text string) ([]uint, error) {
	ids, _, err := c.encoding.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}
	return ids, nil
}

// CountTokens counts the number of tokens in the given text.
func (c codec) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, err := c.encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// windows cuts tokens[0:n] into windows of size tokens advancing by stride and
// decodes each one. offset shifts the recorded token positions.
func (c codec) windows(tokens []uint, size, stride, offset int) ([]Chunk, error) {
	if stride <= 0 {
		stride = size
	}

	var chunks []Chunk
	for start := 0; start < len(tokens); start += stride {
		end := min(start+size, len(tokens))

		text, err := c.encoding.Decode(tokens[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to decode tokens %d-%d: %w", offset+start, offset+end, err)
		}
		chunks = append(chunks, Chunk{
			Text:       text,
			StartToken: offset + start,
			EndToken:   offset + end,
		})

		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
