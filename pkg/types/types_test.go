package types

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		input   string
		want    NodeType
		wantErr bool
	}{
		{input: "CONCEPT", want: ConceptNodeType},
		{input: "concept", want: ConceptNodeType},
		{input: " topic ", want: TopicNodeType},
		{input: "CUSTOM", want: CustomNodeType},
		{input: "episode", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNodeType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNodeType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRelationType(t *testing.T) {
	for _, rt := range RelationTypes {
		got, err := ParseRelationType(string(rt))
		require.NoError(t, err)
		assert.Equal(t, rt, got)
	}

	_, err := ParseRelationType("FOLLOWS")
	assert.ErrorIs(t, err, ErrInvalidRelationType)
}

func TestEnumsAreComplete(t *testing.T) {
	assert.Len(t, NodeTypes, 11)
	assert.Len(t, RelationTypes, 13)
}

func TestNewNode(t *testing.T) {
	props := Properties{"text": String("checkout is slow")}
	n := NewNode(ConceptNodeType, "checkout is slow", props)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, ConceptNodeType, n.Type)
	assert.Equal(t, []string{"CONCEPT"}, n.Labels)
	assert.False(t, n.HasEmbedding())
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	assert.NoError(t, n.Validate())

	// Constructor copies the property map.
	props["text"] = String("changed")
	got, _ := n.Properties.GetString("text")
	assert.Equal(t, "checkout is slow", got)
}

func TestNodeMutatorsAdvanceUpdatedAt(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	orig := now
	now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	t.Cleanup(func() { now = orig })

	n := NewNode(EntityNodeType, "user", nil)
	created := n.CreatedAt

	mutators := []struct {
		name string
		fn   func()
	}{
		{"SetProperty", func() { n.SetProperty("age", Number(30)) }},
		{"AddLabel", func() { n.AddLabel("Person") }},
		{"SetEmbedding", func() { n.SetEmbedding([]float32{1, 2}) }},
		{"Rename", func() { n.Rename("customer") }},
		{"Retype", func() { n.Retype(UserNodeType) }},
	}

	prev := n.UpdatedAt
	for _, m := range mutators {
		m.fn()
		assert.True(t, n.UpdatedAt.After(prev), m.name)
		prev = n.UpdatedAt
	}
	assert.Equal(t, created, n.CreatedAt)
	assert.True(t, n.HasLabel("USER"))
	assert.True(t, n.HasLabel("ENTITY"))
}

func TestNodeLabelsAreSet(t *testing.T) {
	n := NewNode(ConceptNodeType, "x", nil)
	n.AddLabel("ux")
	n.AddLabel("ux")
	n.AddLabel("CONCEPT")
	assert.Equal(t, []string{"CONCEPT", "ux"}, n.Labels)
}

func TestNodeIdentity(t *testing.T) {
	a := NewNode(ConceptNodeType, "a", nil)
	b := a.Clone()
	b.Name = "different"
	c := NewNode(ConceptNodeType, "a", nil)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Key(), b.Key())
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := NewNode(ConceptNodeType, "a", Properties{"m": Map(map[string]PropertyValue{"k": Number(1)})})
	n.SetEmbedding([]float32{1, 2, 3})

	cp := n.Clone()
	cp.Embedding[0] = 9
	cp.Labels[0] = "OTHER"
	cp.Properties["m"] = String("replaced")

	assert.Equal(t, float32(1), n.Embedding[0])
	assert.Equal(t, "CONCEPT", n.Labels[0])
	assert.Equal(t, MapProperty, n.Properties["m"].Kind())
}

func TestNodeJSONOmitsEmbedding(t *testing.T) {
	n := NewNode(ConceptNodeType, "a", nil)
	n.SetEmbedding([]float32{0.5})

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "embedding")
}

func TestNewRelation(t *testing.T) {
	src := NewNode(ConceptNodeType, "a", nil)
	dst := NewNode(ConceptNodeType, "b", nil)

	rel, err := NewRelationBetween(src, dst, SimilarToRelation, Properties{
		PropKind:   String(string(SimilarityEdge)),
		PropWeight: Number(0.82),
	})
	require.NoError(t, err)
	assert.Equal(t, src.ID, rel.SourceID)
	assert.Equal(t, dst.ID, rel.TargetID)
	assert.Equal(t, SimilarityEdge, rel.Kind())
	w, ok := rel.Weight()
	assert.True(t, ok)
	assert.InDelta(t, 0.82, w, 1e-9)
	assert.NoError(t, rel.Validate())

	_, err = NewRelationBetween(src, nil, RelatedToRelation, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = NewRelation("", dst.ID, RelatedToRelation, nil)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestRelationLabel(t *testing.T) {
	rel, err := NewRelation("a", "b", RelatedToRelation, Properties{
		PropKind:  String(string(SymbolicEdge)),
		PropLabel: String("setting"),
	})
	require.NoError(t, err)

	label, ok := rel.Label()
	assert.True(t, ok)
	assert.Equal(t, "setting", label)
	assert.Equal(t, SymbolicEdge, rel.Kind())

	_, ok = rel.Weight()
	assert.False(t, ok)
}

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("load graph %s: %w", "g-1", ErrNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, ErrShapeMismatch, ErrNotFound)
}
