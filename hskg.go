package hskg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/hskg/pkg/builder"
	"github.com/soundprediction/hskg/pkg/embedder"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/storage"
	"github.com/soundprediction/hskg/pkg/types"
)

// ErrNoEmbedder is returned when items need embedding and the client has no embedder.
var ErrNoEmbedder = errors.New("no embedder configured")

// HSKG is the main interface for building and storing hybrid graphs.
type HSKG interface {
	GraphBuilder
	GraphStore

	// Close releases the embedder and the storage backend.
	Close(ctx context.Context) error
}

// Config holds builder defaults for the client.
type Config struct {
	// Threshold is the minimum cosine similarity for a similarity edge.
	Threshold       float64
	SymbolicEdges   bool
	SimilarityEdges bool
	// Workers spreads the similarity matrix over goroutines.
	Workers int
	// GraphName is used when a build names no graph.
	GraphName string
}

// DefaultConfig returns the default builder settings.
func DefaultConfig() *Config {
	return &Config{
		Threshold:       builder.DefaultThreshold,
		SymbolicEdges:   true,
		SimilarityEdges: true,
		Workers:         1,
		GraphName:       "hskg",
	}
}

// BuildOptions override the client's Config for one build.
type BuildOptions struct {
	Name            string
	Threshold       *float64
	SymbolicEdges   *bool
	SimilarityEdges *bool
	// Save persists the graph and sets BuildResult.GraphID.
	Save bool
}

// BuildResult is the outcome of Build.
type BuildResult struct {
	Graph          *builder.Graph
	KnowledgeGraph *graph.KnowledgeGraph
	Stats          graph.Stats
	// GraphID is set when the graph was saved.
	GraphID string
}

// Client is the main implementation of the HSKG interface.
type Client struct {
	embedder embedder.Client
	storage  storage.Backend
	config   *Config
	logger   *slog.Logger
}

var _ HSKG = (*Client)(nil)

// NewClient creates a client. The embedder may be nil when every item
// arrives with an embedding. A nil config uses DefaultConfig.
func NewClient(store storage.Backend, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("storage backend is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		embedder: embedderClient,
		storage:  store,
		config:   config,
		logger:   logger,
	}, nil
}

// GetEmbedder returns the embedder, which may be nil.
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// GetStorage returns the storage backend.
func (c *Client) GetStorage() storage.Backend {
	return c.storage
}

// Embed returns one vector per text.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d texts", types.ErrShapeMismatch, len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedItems fills in missing embeddings in place. Items that already carry
// a vector are left untouched.
func (c *Client) EmbedItems(ctx context.Context, items []types.HeterogeneousItem) error {
	var texts []string
	var idx []int
	for i := range items {
		if !items[i].HasEmbedding() {
			texts = append(texts, items[i].Text)
			idx = append(idx, i)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := c.Embed(ctx, texts)
	if err != nil {
		return err
	}
	for k, i := range idx {
		items[i].Embedding = vectors[k]
	}
	c.logger.Debug("Embedded items", "count", len(idx))
	return nil
}

// Build validates items, embeds the ones without vectors, builds the hybrid
// graph and converts it to a KnowledgeGraph. Items are not modified.
func (c *Client) Build(ctx context.Context, items []types.HeterogeneousItem, options *BuildOptions) (*BuildResult, error) {
	if options == nil {
		options = &BuildOptions{}
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	work := make([]types.HeterogeneousItem, len(items))
	copy(work, items)
	if err := c.EmbedItems(ctx, work); err != nil {
		return nil, err
	}

	b := builder.New(c.builderOptions(options)...)
	built, err := b.BuildItems(work)
	if err != nil {
		return nil, err
	}

	name := options.Name
	if name == "" {
		name = c.config.GraphName
	}
	kg, err := built.ToKnowledgeGraph(name)
	if err != nil {
		return nil, fmt.Errorf("failed to convert graph: %w", err)
	}

	result := &BuildResult{Graph: built, KnowledgeGraph: kg, Stats: kg.Stats()}
	c.logger.Info("Built graph",
		"name", name,
		"nodes", result.Stats.NodeCount,
		"symbolic_edges", result.Stats.SymbolicEdges,
		"similarity_edges", result.Stats.SimilarityEdges)

	if options.Save {
		id, err := c.SaveGraph(ctx, kg, name)
		if err != nil {
			return nil, err
		}
		result.GraphID = id
	}
	return result, nil
}

func (c *Client) builderOptions(o *BuildOptions) []builder.Option {
	threshold := c.config.Threshold
	if o.Threshold != nil {
		threshold = *o.Threshold
	}
	symbolic := c.config.SymbolicEdges
	if o.SymbolicEdges != nil {
		symbolic = *o.SymbolicEdges
	}
	similarity := c.config.SimilarityEdges
	if o.SimilarityEdges != nil {
		similarity = *o.SimilarityEdges
	}
	return []builder.Option{
		builder.WithThreshold(threshold),
		builder.WithSymbolicEdges(symbolic),
		builder.WithSimilarityEdges(similarity),
		builder.WithWorkers(c.config.Workers),
		builder.WithLogger(c.logger),
	}
}

// SaveGraph persists g as a new stored copy and returns its id.
func (c *Client) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error) {
	if g == nil {
		return "", errors.New("graph is nil")
	}
	var embedded int
	for _, n := range g.Nodes() {
		if n.HasEmbedding() {
			embedded++
		}
	}
	if embedded > 0 {
		c.logger.Warn("Embedding vectors are not persisted; only presence flags are stored", "nodes", embedded)
	}

	id, err := c.storage.SaveGraph(ctx, g, name)
	if err != nil {
		return "", fmt.Errorf("failed to save graph: %w", err)
	}
	c.logger.Info("Saved graph", "graph_id", id, "nodes", g.NodeCount(), "relations", g.RelationCount())
	return id, nil
}

// LoadGraph loads a stored graph. Unknown ids yield types.ErrNotFound.
func (c *Client) LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error) {
	return c.storage.LoadGraph(ctx, id)
}

// DeleteGraph removes a stored graph, reporting whether it existed.
func (c *Client) DeleteGraph(ctx context.Context, id string) (bool, error) {
	deleted, err := c.storage.DeleteGraph(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		c.logger.Info("Deleted graph", "graph_id", id)
	}
	return deleted, nil
}

// ListGraphs lists stored graphs, oldest first.
func (c *Client) ListGraphs(ctx context.Context) ([]storage.GraphInfo, error) {
	return c.storage.ListGraphs(ctx)
}

// Close closes the embedder and the storage backend.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.embedder != nil {
		errs = append(errs, c.embedder.Close())
	}
	errs = append(errs, c.storage.Close())
	return errors.Join(errs...)
}
