// Package textutil holds small text helpers shared across packages.
package textutil

import "strings"

// MaxInputLen caps sanitized user input, in bytes.
const MaxInputLen = 8000

// ChunkText splits text into chunks of at most size bytes with the given
// overlap between consecutive chunks. Whitespace-only chunks are dropped.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunk := text[start:end]
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}

// SanitizeInput strips NUL bytes, trims surrounding whitespace, and caps
// length at MaxInputLen.
func SanitizeInput(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.TrimSpace(text)
	if len(text) > MaxInputLen {
		text = text[:MaxInputLen]
	}
	return text
}
