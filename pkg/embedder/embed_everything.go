//go:build embedeverything

package embedder

import (
	"context"
	"fmt"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// EmbedEverythingClient runs a local embedding model through go-embedeverything.
type EmbedEverythingClient struct {
	client *embedder.Embedder
	config Config
}

// NewEmbedEverythingClient loads config.Model, e.g. "all-MiniLM-L6-v2".
func NewEmbedEverythingClient(config Config) (*EmbedEverythingClient, error) {
	if config.Model == "" {
		config.Model = defaultLocalModel
	}
	client, err := embedder.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	c := &EmbedEverythingClient{client: client, config: config}
	if c.config.Dimensions <= 0 {
		probe, err := client.Embed([]string{"dimension probe"})
		if err != nil || len(probe) == 0 {
			client.Close()
			return nil, fmt.Errorf("failed to probe embedding dimensions: %v", err)
		}
		c.config.Dimensions = len(probe[0])
	}
	return c, nil
}

// Embed generates embeddings for the given texts.
func (e *EmbedEverythingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// go-embedeverything does not support context yet
	embeddings, err := e.client.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *EmbedEverythingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, e, text)
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *EmbedEverythingClient) Dimensions() int {
	return e.config.Dimensions
}

// Close releases the native model.
func (e *EmbedEverythingClient) Close() error {
	e.client.Close()
	return nil
}

func newEmbedEverythingClient(config Config) (Client, error) {
	return NewEmbedEverythingClient(config)
}
