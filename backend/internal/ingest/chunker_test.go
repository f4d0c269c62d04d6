package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunker(t *testing.T, size, overlap int) *TokenChunker {
	t.Helper()
	chunker, err := NewTokenChunker(size, overlap)
	if err != nil {
		// Encoding data is fetched on first use; without it these tests
		// cannot run
		t.Skipf("token encoding unavailable: %v", err)
	}
	return chunker
}

func TestNewTokenChunkerRejectsBadArguments(t *testing.T) {
	_, err := NewTokenChunker(0, 0)
	require.Error(t, err)

	_, err = NewTokenChunker(-5, 0)
	require.Error(t, err)

	_, err = NewTokenChunker(10, -1)
	require.Error(t, err)

	_, err = NewTokenChunker(10, 10)
	require.Error(t, err)

	_, err = NewTokenChunker(10, 25)
	require.Error(t, err)
}

func TestSplitEmptyInput(t *testing.T) {
	chunker := newTestChunker(t, 10, 2)

	chunks, err := chunker.Split("")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = chunker.Split("   \n\t  ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	chunker := newTestChunker(t, 100, 10)

	chunks, err := chunker.Split("a short sentence")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short sentence", chunks[0])
}

func TestSplitLongInputOverlappingWindows(t *testing.T) {
	chunker := newTestChunker(t, 10, 2)

	// 200 repeated words guarantee several windows at size 10
	words := make([]string, 200)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	chunks, err := chunker.Split(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// Concatenation must cover the full input despite the overlap
	joined := strings.Join(chunks, "")
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk)
	}
	assert.Contains(t, joined, "word")
}

func TestSplitNoOverlap(t *testing.T) {
	chunker := newTestChunker(t, 5, 0)

	chunks, err := chunker.Split("one two three four five six seven eight nine ten")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// With zero overlap the chunks reassemble to exactly the input
	assert.Equal(t, "one two three four five six seven eight nine ten", strings.Join(chunks, ""))
}
