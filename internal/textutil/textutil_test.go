package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 3) // 30 bytes
	chunks := ChunkText(text, 10, 2)

	require.NotEmpty(t, chunks)
	assert.Equal(t, "abcdefghij", chunks[0])
	// Each next chunk starts 8 bytes later (size minus overlap).
	assert.Equal(t, "ijabcdefgh", chunks[1])
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 10)
	}
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("short", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestChunkTextEmptyAndInvalid(t *testing.T) {
	assert.Empty(t, ChunkText("", 10, 2))
	assert.Empty(t, ChunkText("   ", 10, 2))
	assert.Empty(t, ChunkText("text", 0, 0))
}

func TestChunkTextBadOverlapIgnored(t *testing.T) {
	// Overlap >= size would loop forever; it falls back to no overlap.
	chunks := ChunkText(strings.Repeat("x", 20), 5, 7)
	assert.Len(t, chunks, 4)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeInput("  hello\x00 world  "))
	assert.Equal(t, "", SanitizeInput("\x00\x00"))

	long := strings.Repeat("a", MaxInputLen+100)
	assert.Len(t, SanitizeInput(long), MaxInputLen)
}
