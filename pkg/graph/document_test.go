package graph

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph(t *testing.T) *KnowledgeGraph {
	t.Helper()
	g := New("sample")
	a := mustAddNode(t, g, types.ConceptNodeType, "too many taps to pay", types.Properties{
		types.PropCategory: types.String("state"),
		"meta":             types.Map(map[string]types.PropertyValue{"rating": types.Number(2)}),
	})
	a.SetEmbedding([]float32{0.1, 0.2})
	b := mustAddNode(t, g, types.DocumentNodeType, "reduce steps in checkout", nil)
	b.AddLabel("design")
	mustAddRelation(t, g, a, b, types.SimilarToRelation, types.Properties{
		types.PropKind:   types.String(string(types.SimilarityEdge)),
		types.PropWeight: types.Number(0.77),
	})
	return g
}

func TestToDocument(t *testing.T) {
	g := sampleGraph(t)
	doc := g.ToDocument()

	assert.Equal(t, "sample", doc.Name)
	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Relations, 1)
	assert.True(t, doc.Nodes[0].HasEmbedding)
	assert.False(t, doc.Nodes[1].HasEmbedding)
	assert.Equal(t, "CONCEPT", doc.Nodes[0].Type)
	assert.Equal(t, "SIMILAR_TO", doc.Relations[0].Type)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"has_embedding":true`)
	assert.NotContains(t, string(data), `"embedding":`)
}

func TestDocumentRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	restored, err := FromDocument(g.ToDocument())
	require.NoError(t, err)

	assert.Equal(t, g.Name(), restored.Name())
	assert.Equal(t, g.NodeCount(), restored.NodeCount())
	assert.Equal(t, g.RelationCount(), restored.RelationCount())

	for _, orig := range g.Nodes() {
		got, ok := restored.GetNode(orig.ID)
		require.True(t, ok)
		assert.Equal(t, orig.Type, got.Type)
		assert.Equal(t, orig.Name, got.Name)
		assert.Equal(t, orig.Labels, got.Labels)
		assert.True(t, orig.Properties.Equal(got.Properties))
		assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, orig.UpdatedAt.Equal(got.UpdatedAt))
		assert.False(t, got.HasEmbedding())
	}

	for _, orig := range g.Relations() {
		got, ok := restored.GetRelation(orig.ID)
		require.True(t, ok)
		assert.Equal(t, orig.SourceID, got.SourceID)
		assert.Equal(t, orig.TargetID, got.TargetID)
		assert.True(t, orig.Properties.Equal(got.Properties))
	}

	// Identity by id.
	assert.True(t, g.Nodes()[0].Equal(restored.Nodes()[0]))
}

func TestFromDocumentDanglingEndpoint(t *testing.T) {
	doc := sampleGraph(t).ToDocument()
	doc.Relations[0].TargetID = "does-not-exist"

	_, err := FromDocument(doc)
	assert.ErrorIs(t, err, types.ErrDanglingEndpoint)
}

func TestFromDocumentInvalidType(t *testing.T) {
	doc := sampleGraph(t).ToDocument()
	doc.Nodes[0].Type = "EPISODE"

	_, err := FromDocument(doc)
	assert.ErrorIs(t, err, types.ErrInvalidNodeType)
}

func TestJSONStreamRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	require.NoError(t, g.WriteJSON(&buf))

	restored, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Stats(), restored.Stats())
}

func TestSaveAndLoadFile(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	require.NoError(t, g.SaveFile(path))
	restored, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, g.ToDocument().Nodes[1].Name, restored.ToDocument().Nodes[1].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
