package hskg

import (
	"context"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/storage"
	"github.com/soundprediction/hskg/pkg/types"
)

// GraphBuilder turns items into hybrid graphs.
type GraphBuilder interface {
	// Embed returns one vector per text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedItems fills in the embedding of every item that has none.
	EmbedItems(ctx context.Context, items []types.HeterogeneousItem) error

	// Build embeds items as needed, builds the hybrid graph and, when
	// options.Save is set, persists it.
	Build(ctx context.Context, items []types.HeterogeneousItem, options *BuildOptions) (*BuildResult, error)
}

// GraphStore persists whole graphs by id.
type GraphStore interface {
	SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error)
	LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error)
	DeleteGraph(ctx context.Context, id string) (bool, error)
	ListGraphs(ctx context.Context) ([]storage.GraphInfo, error)
}
