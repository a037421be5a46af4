package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls map[string]int
}

func (l *countingLoader) load(_ context.Context, id string) (*graph.KnowledgeGraph, error) {
	if id == "missing" {
		return nil, fmt.Errorf("graph %s: %w", id, types.ErrNotFound)
	}
	l.calls[id]++
	return graph.New(id), nil
}

func TestGraphCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		max       int
		ids       []string
		evict     string
		reload    string
		wantLen   int
		wantCalls int
	}{
		{name: "hit after first load", max: 4, ids: []string{"a", "a", "a"}, reload: "a", wantLen: 1, wantCalls: 1},
		{name: "evicted on delete", max: 4, ids: []string{"a", "b"}, evict: "a", reload: "a", wantLen: 2, wantCalls: 2},
		{name: "oldest pushed out", max: 2, ids: []string{"a", "b", "c"}, reload: "a", wantLen: 2, wantCalls: 2},
		{name: "newest kept", max: 2, ids: []string{"a", "b", "c"}, reload: "c", wantLen: 2, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &countingLoader{calls: map[string]int{}}
			cache := newGraphCache(tt.max, loader.load)

			for _, id := range tt.ids {
				_, err := cache.get(ctx, id)
				require.NoError(t, err)
			}
			if tt.evict != "" {
				cache.evict(tt.evict)
			}

			g, err := cache.get(ctx, tt.reload)
			require.NoError(t, err)
			require.NoError(t, g.View(func(kg *graph.KnowledgeGraph) error {
				assert.Equal(t, tt.reload, kg.Name())
				return nil
			}))
			assert.Equal(t, tt.wantLen, cache.len())
			assert.Equal(t, tt.wantCalls, loader.calls[tt.reload])
		})
	}
}

func TestGraphCacheLoadError(t *testing.T) {
	loader := &countingLoader{calls: map[string]int{}}
	cache := newGraphCache(0, loader.load)

	_, err := cache.get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 0, cache.len())
}
