package storage

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/soundprediction/hskg/pkg/graph"
)

func init() {
	Register(MemoryStorage, func(_ context.Context, _ Config, logger *slog.Logger) (Backend, error) {
		return NewMemoryBackend(logger), nil
	})
}

type memoryGraph struct {
	info GraphInfo
	doc  *graph.Document
}

// MemoryBackend keeps serialized graphs in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	graphs map[string]*memoryGraph
	logger *slog.Logger
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(logger *slog.Logger) *MemoryBackend {
	return &MemoryBackend{
		graphs: make(map[string]*memoryGraph),
		logger: orDefault(logger),
	}
}

func (m *MemoryBackend) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, doc, err := snapshot(g, name)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.graphs[info.ID] = &memoryGraph{info: info, doc: doc}
	m.mu.Unlock()

	m.logger.Debug("Saved graph", "backend", MemoryStorage, "graph_id", info.ID, "nodes", info.Metadata.NodeCount)
	return info.ID, nil
}

func (m *MemoryBackend) LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	stored, ok := m.graphs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	// Records are immutable once stored; assemble clones what it restores.
	return assemble(m.logger, id, stored.info.Name, stored.doc.Nodes, stored.doc.Relations)
}

func (m *MemoryBackend) DeleteGraph(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.graphs[id]; !ok {
		return false, nil
	}
	delete(m.graphs, id)
	return true, nil
}

func (m *MemoryBackend) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	infos := make([]GraphInfo, 0, len(m.graphs))
	for _, stored := range m.graphs {
		infos = append(infos, stored.info.clone())
	}
	m.mu.RUnlock()

	sortInfos(infos)
	return infos, nil
}

func (m *MemoryBackend) Close() error { return nil }

func sortInfos(infos []GraphInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
}
