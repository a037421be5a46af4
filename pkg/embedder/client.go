package embedder

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when a provider was not compiled in.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Client turns texts into embedding vectors.
type Client interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle embeds one text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the length of the returned vectors.
	Dimensions() int

	Close() error
}

// Config holds provider-neutral embedding settings.
type Config struct {
	Model      string `json:"model"`
	BaseURL    string `json:"base_url,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	// BatchSize caps the number of texts per provider request.
	BatchSize int `json:"batch_size,omitempty"`
}

// embedSingle is the shared EmbedSingle implementation.
func embedSingle(ctx context.Context, c Client, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return embeddings[0], nil
}
