package ingest

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits text into an ordered list of chunks
type Chunker interface {
	Split(text string) ([]string, error)
}

// TokenChunker splits on a sliding token window using the cl100k_base
// encoding. Defaults follow the ingestion configuration: 250 tokens per
// chunk with an overlap of 10.
type TokenChunker struct {
	encoding *tiktoken.Tiktoken
	size     int
	overlap  int
}

// NewTokenChunker creates a token-window chunker
func NewTokenChunker(size, overlap int) (*TokenChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding: %w", err)
	}

	return &TokenChunker{
		encoding: encoding,
		size:     size,
		overlap:  overlap,
	}, nil
}

// Split slices the text into token windows, each overlapping the previous by
// the configured amount. Empty input yields no chunks.
func (c *TokenChunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens := c.encoding.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.encoding.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}
