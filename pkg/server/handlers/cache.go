package handlers

import (
	"context"
	"sync"

	"github.com/soundprediction/hskg/pkg/graph"
)

const defaultCachedGraphs = 32

type loadFunc func(ctx context.Context, id string) (*graph.KnowledgeGraph, error)

// graphCache keeps recently loaded graphs for read-only endpoints.
// A stored graph never changes under its id, so entries only leave the
// cache on delete or when the oldest one is pushed out.
type graphCache struct {
	mu     sync.Mutex
	max    int
	order  []string
	graphs map[string]*graph.Synchronized
	load   loadFunc
}

func newGraphCache(max int, load loadFunc) *graphCache {
	if max <= 0 {
		max = defaultCachedGraphs
	}
	return &graphCache{
		max:    max,
		graphs: make(map[string]*graph.Synchronized),
		load:   load,
	}
}

func (c *graphCache) get(ctx context.Context, id string) (*graph.Synchronized, error) {
	c.mu.Lock()
	if g, ok := c.graphs[id]; ok {
		c.mu.Unlock()
		return g, nil
	}
	c.mu.Unlock()

	kg, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.graphs[id]; ok {
		return g, nil
	}
	g := graph.NewSynchronized(kg)
	c.graphs[id] = g
	c.order = append(c.order, id)
	for len(c.order) > c.max {
		delete(c.graphs, c.order[0])
		c.order = c.order[1:]
	}
	return g, nil
}

func (c *graphCache) evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.graphs[id]; !ok {
		return
	}
	delete(c.graphs, id)
	for i, cached := range c.order {
		if cached == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *graphCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.graphs)
}
