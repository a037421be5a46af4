package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/soundprediction/hskg/pkg/types"
)

// StorageType tags a backend implementation.
type StorageType string

const (
	MemoryStorage   StorageType = "memory"
	PostgresStorage StorageType = "postgres"
	SQLiteStorage   StorageType = "sqlite"
	BadgerStorage   StorageType = "badger"
	Neo4jStorage    StorageType = "neo4j"
)

// Config selects and configures a backend. Fields irrelevant to the chosen
// type are ignored.
type Config struct {
	Type StorageType `mapstructure:"type" json:"type" yaml:"type"`

	// DSN is the postgres connection string or the sqlite database path.
	DSN string `mapstructure:"dsn" json:"dsn" yaml:"dsn"`

	// Path is the badger directory. Empty runs badger in memory.
	Path string `mapstructure:"path" json:"path" yaml:"path"`

	// Neo4j connection.
	URI      string `mapstructure:"uri" json:"uri" yaml:"uri"`
	Username string `mapstructure:"username" json:"username" yaml:"username"`
	Password string `mapstructure:"password" json:"-" yaml:"password"`
	Database string `mapstructure:"database" json:"database" yaml:"database"`

	// UseVector declares the postgres embedding column as pgvector's vector type.
	UseVector           bool `mapstructure:"use_vector" json:"use_vector" yaml:"use_vector"`
	EmbeddingDimensions int  `mapstructure:"embedding_dimensions" json:"embedding_dimensions" yaml:"embedding_dimensions"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// Factory opens a backend from its configuration.
type Factory func(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[StorageType]Factory)
)

// Register makes a backend available under tag. Backends in this package
// register themselves at init; registering a tag twice replaces the factory.
func Register(tag StorageType, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = factory
}

// Available lists the registered tags in sorted order.
func Available() []StorageType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]StorageType, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// New opens the backend named by cfg.Type. An empty type selects the memory
// backend. Unknown tags fail with types.ErrUnsupportedStorageType.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.Type == "" {
		cfg.Type = MemoryStorage
	}

	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", types.ErrUnsupportedStorageType, cfg.Type, Available())
	}

	backend, err := factory(ctx, cfg, orDefault(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Type, err)
	}
	return backend, nil
}
