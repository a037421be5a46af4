package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 128
)

// ErrInvalidChunking is returned when the overlap would stop the window from advancing.
var ErrInvalidChunking = errors.New("chunk size must be greater than overlap")

// ChunkText splits text into overlapping windows of at most size runes,
// advancing by size-overlap. Whitespace-only chunks are dropped.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || size <= overlap {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, size, overlap)
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// LoadTextChunks reads a plain-text design reference and chunks it.
func LoadTextChunks(path string, size, overlap int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design text: %w", err)
	}
	return ChunkText(strings.ToValidUTF8(string(data), ""), size, overlap)
}
