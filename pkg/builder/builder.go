package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/soundprediction/hskg/pkg/utils"
)

// DefaultThreshold is the minimum cosine similarity for a similarity edge.
const DefaultThreshold = 0.7

// BuiltNode is one input item in a built graph. Its Index is its position in the input.
type BuiltNode struct {
	Index     int            `json:"index"`
	Text      string         `json:"text"`
	Category  string         `json:"category,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Modality  types.Modality `json:"modality,omitempty"`
	Source    types.Source   `json:"source,omitempty"`
}

// BuiltEdge links two built nodes by index. Similarity edges carry Weight,
// symbolic edges carry Label.
type BuiltEdge struct {
	Source int            `json:"source"`
	Target int            `json:"target"`
	Kind   types.EdgeKind `json:"kind"`
	Weight float64        `json:"weight,omitempty"`
	Label  string         `json:"label,omitempty"`
}

// Graph is the output of a build: nodes 0..n-1 and a multiset of undirected edges.
type Graph struct {
	Nodes []BuiltNode `json:"nodes"`
	Edges []BuiltEdge `json:"edges"`
}

// Stats summarises a built graph.
type Stats struct {
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	SymbolicEdges   int     `json:"symbolic_edges"`
	SimilarityEdges int     `json:"similarity_edges"`
	Density         float64 `json:"density"`
}

// Stats counts nodes and edges per kind.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, e := range g.Edges {
		switch e.Kind {
		case types.SymbolicEdge:
			s.SymbolicEdges++
		case types.SimilarityEdge:
			s.SimilarityEdges++
		}
	}
	s.Density = graph.Density(s.Nodes, s.Edges)
	return s
}

// EdgesOfKind returns the edges of one layer, in build order.
func (g *Graph) EdgesOfKind(kind types.EdgeKind) []BuiltEdge {
	var out []BuiltEdge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Builder turns items and their embeddings into a hybrid graph with a
// similarity layer and a symbolic (shared category) layer.
type Builder struct {
	threshold  float64
	symbolic   bool
	similarity bool
	workers    int
	logger     *slog.Logger

	graph *Graph
}

// Option configures a Builder.
type Option func(*Builder)

// WithThreshold sets the similarity threshold. Pairs at or above it are linked.
func WithThreshold(threshold float64) Option {
	return func(b *Builder) { b.threshold = threshold }
}

// WithSymbolicEdges toggles the category layer.
func WithSymbolicEdges(enabled bool) Option {
	return func(b *Builder) { b.symbolic = enabled }
}

// WithSimilarityEdges toggles the embedding similarity layer.
func WithSimilarityEdges(enabled bool) Option {
	return func(b *Builder) { b.similarity = enabled }
}

// WithWorkers spreads the similarity matrix over n goroutines.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// New creates a Builder. Both layers are enabled and the threshold is DefaultThreshold.
func New(opts ...Option) *Builder {
	b := &Builder{
		threshold:  DefaultThreshold,
		symbolic:   true,
		similarity: true,
		workers:    1,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Threshold returns the configured similarity threshold.
func (b *Builder) Threshold() float64 { return b.threshold }

// Graph returns the most recently built graph, or nil before the first build.
func (b *Builder) Graph() *Graph { return b.graph }

// Build creates a graph with one node per sentence.
//
// vectors must hold one row per sentence, all of one dimension. categories is
// either empty (every item uncategorised) or parallel to sentences, with ""
// marking an uncategorised item. On any shape error ErrShapeMismatch is
// returned and the previously built graph is kept.
func (b *Builder) Build(sentences []string, vectors [][]float32, categories []string) (*Graph, error) {
	nodes, err := b.nodesFor(sentences, vectors, categories)
	if err != nil {
		return nil, err
	}
	return b.build(nodes)
}

// BuildItems builds from heterogeneous items. Every item must carry an embedding.
func (b *Builder) BuildItems(items []types.HeterogeneousItem) (*Graph, error) {
	nodes := make([]BuiltNode, len(items))
	for i, item := range items {
		if item.Embedding == nil {
			return nil, fmt.Errorf("%w: item %d has no embedding", types.ErrShapeMismatch, i)
		}
		nodes[i] = BuiltNode{
			Index:     i,
			Text:      item.Text,
			Category:  item.Category,
			Embedding: append([]float32(nil), item.Embedding...),
			Modality:  item.Modality,
			Source:    item.Source,
		}
	}
	return b.build(nodes)
}

func (b *Builder) nodesFor(sentences []string, vectors [][]float32, categories []string) ([]BuiltNode, error) {
	n := len(sentences)
	if len(vectors) != n {
		return nil, fmt.Errorf("%w: %d sentences but %d vectors", types.ErrShapeMismatch, n, len(vectors))
	}
	if len(categories) != 0 && len(categories) != n {
		return nil, fmt.Errorf("%w: %d sentences but %d categories", types.ErrShapeMismatch, n, len(categories))
	}

	nodes := make([]BuiltNode, n)
	for i, text := range sentences {
		nodes[i] = BuiltNode{
			Index:     i,
			Text:      text,
			Embedding: append([]float32(nil), vectors[i]...),
		}
		if len(categories) > 0 {
			nodes[i].Category = categories[i]
		}
	}
	return nodes, nil
}

func (b *Builder) build(nodes []BuiltNode) (*Graph, error) {
	vectors := make([][]float32, len(nodes))
	for i := range nodes {
		vectors[i] = nodes[i].Embedding
	}
	if _, err := utils.MatrixDimension(vectors); err != nil {
		if errors.Is(err, utils.ErrRaggedMatrix) {
			return nil, fmt.Errorf("%w: %v", types.ErrShapeMismatch, err)
		}
		return nil, err
	}

	g := &Graph{Nodes: nodes, Edges: []BuiltEdge{}}

	if b.similarity {
		edges, err := b.similarityEdges(vectors)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, edges...)
	}
	if b.symbolic {
		g.Edges = append(g.Edges, symbolicEdges(nodes)...)
	}

	b.graph = g
	stats := g.Stats()
	b.logger.Debug("Built hybrid graph",
		"nodes", stats.Nodes,
		"similarity_edges", stats.SimilarityEdges,
		"symbolic_edges", stats.SymbolicEdges,
		"threshold", b.threshold)
	return g, nil
}

// similarityEdges links every pair i<j whose cosine similarity reaches the threshold.
func (b *Builder) similarityEdges(vectors [][]float32) ([]BuiltEdge, error) {
	sims, err := utils.PairwiseCosineConcurrent(context.Background(), vectors, b.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to compute similarity matrix: %w", err)
	}

	var edges []BuiltEdge
	for i := range sims {
		for j := i + 1; j < len(sims); j++ {
			if sims[i][j] >= b.threshold {
				edges = append(edges, BuiltEdge{Source: i, Target: j, Kind: types.SimilarityEdge, Weight: sims[i][j]})
			}
		}
	}
	return edges, nil
}

// symbolicEdges links every pair within each category. Categories are visited
// in order of first appearance.
func symbolicEdges(nodes []BuiltNode) []BuiltEdge {
	var order []string
	groups := make(map[string][]int)
	for _, n := range nodes {
		if n.Category == "" {
			continue
		}
		if _, seen := groups[n.Category]; !seen {
			order = append(order, n.Category)
		}
		groups[n.Category] = append(groups[n.Category], n.Index)
	}

	var edges []BuiltEdge
	for _, category := range order {
		members := groups[category]
		for a := 0; a < len(members); a++ {
			for c := a + 1; c < len(members); c++ {
				edges = append(edges, BuiltEdge{Source: members[a], Target: members[c], Kind: types.SymbolicEdge, Label: category})
			}
		}
	}
	return edges
}
