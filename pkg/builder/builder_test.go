package builder

import (
	"testing"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmptyAndSingle(t *testing.T) {
	b := New()

	g, err := b.Build(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)

	g, err = b.Build([]string{"only"}, [][]float32{{1, 0}}, []string{"user"})
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestBuildSimilarityLayer(t *testing.T) {
	sentences := []string{"app crashes on login", "login crashes the app", "love the colours"}
	vectors := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 0, 1}}

	g, err := New().Build(sentences, vectors, nil)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	for i, n := range g.Nodes {
		assert.Equal(t, i, n.Index)
		assert.Equal(t, sentences[i], n.Text)
		assert.Equal(t, vectors[i], n.Embedding)
		assert.Empty(t, n.Category)
	}

	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	assert.Equal(t, 0, e.Source)
	assert.Equal(t, 1, e.Target)
	assert.Equal(t, types.SimilarityEdge, e.Kind)
	assert.InDelta(t, 0.9939, e.Weight, 1e-3)
	assert.Empty(t, g.EdgesOfKind(types.SymbolicEdge))
}

func TestBuildThresholdIsInclusive(t *testing.T) {
	g, err := New(WithThreshold(1.0)).Build([]string{"a", "b"}, [][]float32{{1, 0}, {1, 0}}, nil)
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, 1.0, g.Edges[0].Weight)
}

func TestBuildSymbolicLayer(t *testing.T) {
	sentences := []string{"s0", "s1", "s2", "s3", "s4"}
	vectors := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 0.001}}
	categories := []string{"setting", "", "setting", "state", "setting"}

	g, err := New(WithThreshold(2)).Build(sentences, vectors, categories)
	require.NoError(t, err)

	assert.Empty(t, g.EdgesOfKind(types.SimilarityEdge))
	assert.Equal(t, []BuiltEdge{
		{Source: 0, Target: 2, Kind: types.SymbolicEdge, Label: "setting"},
		{Source: 0, Target: 4, Kind: types.SymbolicEdge, Label: "setting"},
		{Source: 2, Target: 4, Kind: types.SymbolicEdge, Label: "setting"},
	}, g.Edges)
	assert.Equal(t, "", g.Nodes[1].Category)
	assert.Equal(t, "state", g.Nodes[3].Category)
}

func TestBuildKeepsParallelEdges(t *testing.T) {
	g, err := New().Build(
		[]string{"toggle is hidden", "hidden toggle"},
		[][]float32{{1, 1}, {1, 1}},
		[]string{"setting", "setting"},
	)
	require.NoError(t, err)

	require.Len(t, g.Edges, 2)
	assert.Equal(t, types.SimilarityEdge, g.Edges[0].Kind)
	assert.Equal(t, types.SymbolicEdge, g.Edges[1].Kind)
	for _, e := range g.Edges {
		assert.Equal(t, 0, e.Source)
		assert.Equal(t, 1, e.Target)
	}

	stats := g.Stats()
	assert.Equal(t, Stats{Nodes: 2, Edges: 2, SymbolicEdges: 1, SimilarityEdges: 1, Density: 2}, stats)
}

func TestBuildShapeMismatch(t *testing.T) {
	tests := []struct {
		name       string
		sentences  []string
		vectors    [][]float32
		categories []string
	}{
		{name: "fewer vectors", sentences: []string{"a", "b"}, vectors: [][]float32{{1}}},
		{name: "more vectors", sentences: []string{"a"}, vectors: [][]float32{{1}, {2}}},
		{name: "categories length", sentences: []string{"a", "b"}, vectors: [][]float32{{1}, {2}}, categories: []string{"x"}},
		{name: "ragged vectors", sentences: []string{"a", "b"}, vectors: [][]float32{{1, 2}, {3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			prev, err := b.Build([]string{"kept"}, [][]float32{{1}}, nil)
			require.NoError(t, err)

			g, err := b.Build(tt.sentences, tt.vectors, tt.categories)
			assert.ErrorIs(t, err, types.ErrShapeMismatch)
			assert.Nil(t, g)
			assert.Same(t, prev, b.Graph())
		})
	}
}

func TestBuildClearsPreviousGraph(t *testing.T) {
	b := New()
	_, err := b.Build([]string{"a", "b", "c"}, [][]float32{{1}, {1}, {1}}, []string{"x", "x", "x"})
	require.NoError(t, err)

	g, err := b.Build([]string{"d", "e"}, [][]float32{{1, 0}, {0, 1}}, nil)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Empty(t, g.Edges)
	assert.Same(t, g, b.Graph())
}

func TestBuildIsDeterministic(t *testing.T) {
	sentences := []string{"a", "b", "c", "d", "e", "f"}
	vectors := [][]float32{{1, 0.2}, {0.9, 0.3}, {0.1, 1}, {0.2, 0.9}, {1, 0.25}, {0.5, 0.5}}
	categories := []string{"goal", "fix", "goal", "item", "fix", "goal"}

	first, err := New().Build(sentences, vectors, categories)
	require.NoError(t, err)
	second, err := New(WithWorkers(4)).Build(sentences, vectors, categories)
	require.NoError(t, err)

	assert.Equal(t, first.Edges, second.Edges)
}

func TestBuildAblations(t *testing.T) {
	sentences := []string{"a", "b", "c"}
	vectors := [][]float32{{1, 0}, {1, 0}, {0, 1}}
	categories := []string{"user", "", "user"}

	symbolicOnly, err := New(WithSimilarityEdges(false)).Build(sentences, vectors, categories)
	require.NoError(t, err)
	assert.Equal(t, 1, symbolicOnly.Stats().SymbolicEdges)
	assert.Zero(t, symbolicOnly.Stats().SimilarityEdges)

	semanticOnly, err := New(WithSymbolicEdges(false)).Build(sentences, vectors, categories)
	require.NoError(t, err)
	assert.Zero(t, semanticOnly.Stats().SymbolicEdges)
	assert.Equal(t, 1, semanticOnly.Stats().SimilarityEdges)
}

func TestBuildItems(t *testing.T) {
	items := []types.HeterogeneousItem{
		{Text: "can't find dark mode", Modality: types.TextModality, Source: types.UXSource, Category: "setting", Embedding: []float32{1, 0}},
		{Text: "expose theme switch in header", Modality: types.ImageModality, Source: types.DesignSource, Category: "setting", Embedding: []float32{0.95, 0.05}},
	}

	g, err := New().BuildItems(items)
	require.NoError(t, err)
	assert.Equal(t, types.ImageModality, g.Nodes[1].Modality)
	assert.Equal(t, types.DesignSource, g.Nodes[1].Source)
	assert.Len(t, g.Edges, 2)

	items[1].Embedding = nil
	_, err = New().BuildItems(items)
	assert.ErrorIs(t, err, types.ErrShapeMismatch)
}

func TestToKnowledgeGraph(t *testing.T) {
	g, err := New().Build(
		[]string{"slow search", "search is slow", "nice icons"},
		[][]float32{{1, 0}, {1, 0.05}, {0, 1}},
		[]string{"state", "state", "item"},
	)
	require.NoError(t, err)

	kg, err := g.ToKnowledgeGraph("feedback")
	require.NoError(t, err)

	assert.Equal(t, "feedback", kg.Name())
	assert.Equal(t, 3, kg.NodeCount())
	assert.Equal(t, 2, kg.RelationCount())

	nodes := kg.Nodes()
	for i, n := range nodes {
		assert.Equal(t, types.ConceptNodeType, n.Type)
		assert.True(t, n.HasEmbedding())
		idx, ok := n.Properties.GetNumber(types.PropIndex)
		require.True(t, ok)
		assert.Equal(t, float64(i), idx)
	}

	sims := kg.FindRelations(graph.RelationQuery{Type: types.SimilarToRelation})
	require.Len(t, sims, 1)
	assert.Equal(t, nodes[0].ID, sims[0].SourceID)
	assert.Equal(t, nodes[1].ID, sims[0].TargetID)
	w, ok := sims[0].Weight()
	require.True(t, ok)
	assert.Greater(t, w, 0.99)

	syms := kg.FindRelations(graph.RelationQuery{Type: types.RelatedToRelation})
	require.Len(t, syms, 1)
	label, _ := syms[0].Label()
	assert.Equal(t, "state", label)

	stats := kg.Stats()
	assert.Equal(t, 1, stats.SimilarityEdges)
	assert.Equal(t, 1, stats.SymbolicEdges)
}
