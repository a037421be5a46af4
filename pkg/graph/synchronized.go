package graph

import (
	"sync"

	"github.com/soundprediction/hskg/pkg/types"
)

// Synchronized guards a KnowledgeGraph with a read/write lock.
// Returned nodes and relations are the stored values; callers that mutate
// them must go through UpdateNode or UpdateRelation.
type Synchronized struct {
	mu sync.RWMutex
	g  *KnowledgeGraph
}

// NewSynchronized wraps g. A nil g starts an empty graph.
func NewSynchronized(g *KnowledgeGraph) *Synchronized {
	if g == nil {
		g = New("")
	}
	return &Synchronized{g: g}
}

// View runs fn with shared access to the graph.
func (s *Synchronized) View(fn func(g *KnowledgeGraph) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.g)
}

// Update runs fn with exclusive access to the graph.
func (s *Synchronized) Update(fn func(g *KnowledgeGraph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.g)
}

func (s *Synchronized) AddNode(n *types.Node) (*types.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.AddNode(n)
}

func (s *Synchronized) UpdateNode(n *types.Node) (*types.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateNode(n)
}

func (s *Synchronized) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.RemoveNode(id)
}

func (s *Synchronized) GetNode(id string) (*types.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.GetNode(id)
}

func (s *Synchronized) FindNodes(q NodeQuery) []*types.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.FindNodes(q)
}

func (s *Synchronized) AddRelation(r *types.Relation) (*types.Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.AddRelation(r)
}

func (s *Synchronized) UpdateRelation(r *types.Relation) (*types.Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.UpdateRelation(r)
}

func (s *Synchronized) RemoveRelation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.RemoveRelation(id)
}

func (s *Synchronized) GetRelation(id string) (*types.Relation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.GetRelation(id)
}

func (s *Synchronized) FindRelations(q RelationQuery) []*types.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.FindRelations(q)
}

func (s *Synchronized) GetNeighbors(nodeID string, dir Direction, relTypes ...types.RelationType) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.GetNeighbors(nodeID, dir, relTypes...)
}

func (s *Synchronized) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.Stats()
}

func (s *Synchronized) ToDocument() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.ToDocument()
}
