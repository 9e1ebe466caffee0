package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDocumentShortTextSingleChunk(t *testing.T) {
	t.Parallel()

	chunks := ChunkDocument("One sentence. Another one.", 500, 50)
	require.Len(t, chunks, 1)
	assert.Equal(t, "One sentence. Another one.", chunks[0])
}

func TestChunkDocumentSplitsOnSentenceBoundaries(t *testing.T) {
	t.Parallel()

	first := strings.Repeat("a", 40) + "."
	second := strings.Repeat("b", 40) + "."
	third := strings.Repeat("c", 40) + "."

	chunks := ChunkDocument(first+" "+second+" "+third, 90, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, first+" "+second, chunks[0])
	assert.Equal(t, third, chunks[1])
}

func TestChunkDocumentOverlapCarriesSentences(t *testing.T) {
	t.Parallel()

	first := strings.Repeat("a", 60) + "."
	short := "Key fact."
	second := strings.Repeat("b", 60) + "."

	chunks := ChunkDocument(first+" "+short+" "+second, 75, 20)
	require.Len(t, chunks, 2)
	// the short sentence fits the overlap budget so it opens the next chunk
	assert.True(t, strings.HasSuffix(chunks[0], short))
	assert.True(t, strings.HasPrefix(chunks[1], short))
}

func TestChunkDocumentEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ChunkDocument("", 500, 50))
	assert.Nil(t, ChunkDocument("   \n  ", 500, 50))
}

func TestChunkDocumentUnterminatedTail(t *testing.T) {
	t.Parallel()

	chunks := ChunkDocument("Complete sentence. trailing fragment without punctuation", 500, 50)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "trailing fragment")
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	got := splitSentences("First. Second! Third? tail")
	assert.Equal(t, []string{"First.", "Second!", "Third?", "tail"}, got)
}
