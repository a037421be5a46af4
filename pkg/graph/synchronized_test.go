package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronizedConcurrentWriters(t *testing.T) {
	s := NewSynchronized(nil)
	hub, err := s.AddNode(types.NewNode(types.TopicNodeType, "hub", nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.AddNode(types.NewNode(types.ConceptNodeType, fmt.Sprintf("leaf-%d", i), nil))
			if !assert.NoError(t, err) {
				return
			}
			r, err := types.NewRelationBetween(n, hub, types.PartOfRelation, nil)
			if !assert.NoError(t, err) {
				return
			}
			_, err = s.AddRelation(r)
			assert.NoError(t, err)
			_ = s.FindNodes(NodeQuery{Name: "leaf"})
			_ = s.GetNeighbors(hub.ID, Incoming)
		}(i)
	}
	wg.Wait()

	stats := s.Stats()
	assert.Equal(t, 17, stats.NodeCount)
	assert.Equal(t, 16, stats.RelationCount)
	assert.Len(t, s.GetNeighbors(hub.ID, Incoming, types.PartOfRelation), 16)
}

func TestSynchronizedViewAndUpdate(t *testing.T) {
	s := NewSynchronized(New("wrapped"))

	require.NoError(t, s.Update(func(g *KnowledgeGraph) error {
		_, err := g.AddNode(types.NewNode(types.ConceptNodeType, "x", nil))
		return err
	}))

	var count int
	require.NoError(t, s.View(func(g *KnowledgeGraph) error {
		count = g.NodeCount()
		return nil
	}))
	assert.Equal(t, 1, count)
	assert.Equal(t, "wrapped", s.ToDocument().Name)
}
