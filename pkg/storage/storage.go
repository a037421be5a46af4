package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
)

var now = func() time.Time { return time.Now().UTC() }

// Backend persists knowledge graphs under opaque ids.
//
// Each call either fully succeeds or fully fails. Implementations are safe
// for concurrent use across different graph ids.
type Backend interface {
	// SaveGraph stores a new copy of g and returns its id. An empty name
	// defaults to the graph's own name.
	SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error)

	// LoadGraph rebuilds a stored graph. Unknown ids fail with types.ErrNotFound.
	// Relations whose endpoints cannot be resolved are dropped with a warning.
	LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error)

	// DeleteGraph removes a graph with all its nodes and relations. It reports
	// false, without error, when the id is unknown.
	DeleteGraph(ctx context.Context, id string) (bool, error)

	// ListGraphs returns the stored graphs, oldest first.
	ListGraphs(ctx context.Context) ([]GraphInfo, error)

	Close() error
}

// Metadata is a snapshot of a graph's size taken at save time.
type Metadata struct {
	NodeCount     int            `json:"node_count"`
	RelationCount int            `json:"relation_count"`
	EdgeKinds     map[string]int `json:"edge_kinds"`
}

// GraphInfo describes a stored graph.
type GraphInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  Metadata  `json:"metadata"`
}

// clone returns a copy of info that shares no maps with the original.
func (info GraphInfo) clone() GraphInfo {
	kinds := make(map[string]int, len(info.Metadata.EdgeKinds))
	for k, v := range info.Metadata.EdgeKinds {
		kinds[k] = v
	}
	info.Metadata.EdgeKinds = kinds
	return info
}

// NewMetadata summarises g.
func NewMetadata(g *graph.KnowledgeGraph) Metadata {
	stats := g.Stats()
	return Metadata{
		NodeCount:     stats.NodeCount,
		RelationCount: stats.RelationCount,
		EdgeKinds: map[string]int{
			string(types.SymbolicEdge):   stats.SymbolicEdges,
			string(types.SimilarityEdge): stats.SimilarityEdges,
		},
	}
}

// snapshot assigns a fresh id to g and serializes it.
func snapshot(g *graph.KnowledgeGraph, name string) (GraphInfo, *graph.Document, error) {
	if g == nil {
		return GraphInfo{}, nil, errors.New("save graph: graph is nil")
	}
	if name == "" {
		name = g.Name()
	}
	ts := now()
	info := GraphInfo{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: ts,
		UpdatedAt: ts,
		Metadata:  NewMetadata(g),
	}
	doc := g.ToDocument()
	doc.Name = name
	return info, doc, nil
}

// assemble rebuilds a graph from stored records. Nodes go in first; a relation
// whose endpoint is missing is logged and skipped.
func assemble(logger *slog.Logger, graphID, name string, nodes []graph.NodeRecord, relations []graph.RelationRecord) (*graph.KnowledgeGraph, error) {
	g := graph.New(name)
	for _, rec := range nodes {
		n, err := rec.Node()
		if err != nil {
			return nil, fmt.Errorf("load graph %s: %w", graphID, err)
		}
		if err := g.Restore(n); err != nil {
			return nil, fmt.Errorf("load graph %s: %w", graphID, err)
		}
	}
	for _, rec := range relations {
		r, err := rec.Relation()
		if err != nil {
			return nil, fmt.Errorf("load graph %s: %w", graphID, err)
		}
		if err := g.RestoreRelation(r); err != nil {
			if errors.Is(err, types.ErrDanglingEndpoint) {
				logger.Warn("Dropping relation with unresolved endpoint",
					"graph_id", graphID,
					"relation_id", r.ID,
					"source_id", r.SourceID,
					"target_id", r.TargetID)
				continue
			}
			return nil, fmt.Errorf("load graph %s: %w", graphID, err)
		}
	}
	return g, nil
}

func notFound(id string) error {
	return fmt.Errorf("graph %s: %w", id, types.ErrNotFound)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
