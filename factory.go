package hskg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/hskg/pkg/alert"
	"github.com/soundprediction/hskg/pkg/config"
	"github.com/soundprediction/hskg/pkg/embedder"
	"github.com/soundprediction/hskg/pkg/storage"
)

// NewClientFromConfig opens the configured storage backend and embedder and
// returns a client using the configured builder defaults.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	alerter := alert.New(cfg.Alert, logger)
	emb, err := embedder.New(cfg.Embedding, cfg.CircuitBreaker, alerter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		_ = emb.Close()
		return nil, err
	}

	clientConfig := &Config{
		Threshold:       cfg.Builder.Threshold,
		SymbolicEdges:   cfg.Builder.SymbolicEdges,
		SimilarityEdges: cfg.Builder.SimilarityEdges,
		Workers:         cfg.Builder.Workers,
		GraphName:       "hskg",
	}
	return NewClient(store, emb, clientConfig, logger)
}
