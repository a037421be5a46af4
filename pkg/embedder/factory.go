package embedder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/hskg/pkg/alert"
	"github.com/soundprediction/hskg/pkg/config"
)

const defaultLocalModel = "all-MiniLM-L6-v2"

// Providers lists the accepted EmbeddingConfig.Provider values.
var Providers = []string{"openai", "embedeverything", "hashing"}

// New creates the client named by cfg.Provider. When cb is enabled the
// client is wrapped in a CircuitBreakerClient reporting to alerter.
func New(cfg config.EmbeddingConfig, cb config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) (Client, error) {
	base := Config{
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		Dimensions: cfg.Dimensions,
		BatchSize:  cfg.BatchSize,
	}

	var (
		client Client
		err    error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		client = NewOpenAIEmbedder(cfg.APIKey, base)
	case "embedeverything":
		client, err = newEmbedEverythingClient(base)
	case "hashing":
		// Local and deterministic; nothing to break.
		return NewHashingEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: %s)", cfg.Provider, strings.Join(Providers, ", "))
	}
	if err != nil {
		return nil, err
	}

	if cb.Enabled {
		client = NewCircuitBreakerClient(client, cb, alerter, "embedding-"+strings.ToLower(cfg.Provider), logger)
	}
	return client, nil
}
