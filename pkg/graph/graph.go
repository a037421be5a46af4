package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/hskg/pkg/types"
)

// Direction selects which relations GetNeighbors follows.
type Direction int

const (
	// Outgoing follows relations whose source is the node.
	Outgoing Direction = iota
	// Incoming follows relations whose target is the node.
	Incoming
	// Both follows relations in either direction.
	Both
)

// ParseDirection converts "in", "out" or "both" into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "out", "outgoing", "":
		return Outgoing, nil
	case "in", "incoming":
		return Incoming, nil
	case "both":
		return Both, nil
	default:
		return Outgoing, fmt.Errorf("invalid direction %q (supported: in, out, both)", s)
	}
}

func (d Direction) String() string {
	switch d {
	case Incoming:
		return "in"
	case Both:
		return "both"
	default:
		return "out"
	}
}

type set = map[string]struct{}

// indexKey records the name and type a node was indexed under, so updates can
// remove the old entries even when the caller mutated the node in place.
type indexKey struct {
	name     string
	nodeType types.NodeType
}

// KnowledgeGraph is an in-memory multigraph of typed nodes and relations.
//
// It keeps id maps for nodes and relations, a name index and a type index over
// nodes, and an adjacency view keyed by (source, target, relation id) so that
// parallel relations between the same pair coexist.
//
// A KnowledgeGraph is not safe for concurrent use; wrap it with NewSynchronized
// when it is shared between goroutines.
type KnowledgeGraph struct {
	name string

	nodes     map[string]*types.Node
	relations map[string]*types.Relation

	nameIndex map[string]set
	typeIndex map[types.NodeType]set
	indexed   map[string]indexKey

	// out[source][target] and in[target][source] hold relation ids.
	out       map[string]map[string]set
	in        map[string]map[string]set
	endpoints map[string][2]string

	// seq orders iteration by insertion.
	seq     map[string]uint64
	nextSeq uint64
}

// New creates an empty knowledge graph.
func New(name string) *KnowledgeGraph {
	g := &KnowledgeGraph{name: name}
	g.Clear()
	return g
}

// Name returns the graph name.
func (g *KnowledgeGraph) Name() string { return g.name }

// SetName renames the graph.
func (g *KnowledgeGraph) SetName(name string) { g.name = name }

// Clear removes every node and relation.
func (g *KnowledgeGraph) Clear() {
	g.nodes = make(map[string]*types.Node)
	g.relations = make(map[string]*types.Relation)
	g.nameIndex = make(map[string]set)
	g.typeIndex = make(map[types.NodeType]set)
	g.indexed = make(map[string]indexKey)
	g.out = make(map[string]map[string]set)
	g.in = make(map[string]map[string]set)
	g.endpoints = make(map[string][2]string)
	g.seq = make(map[string]uint64)
	g.nextSeq = 0
}

// NodeCount returns the number of nodes.
func (g *KnowledgeGraph) NodeCount() int { return len(g.nodes) }

// RelationCount returns the number of relations.
func (g *KnowledgeGraph) RelationCount() int { return len(g.relations) }

func (g *KnowledgeGraph) stamp(id string) {
	if _, ok := g.seq[id]; !ok {
		g.nextSeq++
		g.seq[id] = g.nextSeq
	}
}

func normalizeName(name string) string { return strings.ToLower(name) }

func (g *KnowledgeGraph) index(n *types.Node) {
	key := indexKey{name: normalizeName(n.Name), nodeType: n.Type}
	if g.nameIndex[key.name] == nil {
		g.nameIndex[key.name] = make(set)
	}
	g.nameIndex[key.name][n.ID] = struct{}{}
	if g.typeIndex[key.nodeType] == nil {
		g.typeIndex[key.nodeType] = make(set)
	}
	g.typeIndex[key.nodeType][n.ID] = struct{}{}
	g.indexed[n.ID] = key
}

func (g *KnowledgeGraph) unindex(id string) {
	key, ok := g.indexed[id]
	if !ok {
		return
	}
	if ids := g.nameIndex[key.name]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(g.nameIndex, key.name)
		}
	}
	if ids := g.typeIndex[key.nodeType]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(g.typeIndex, key.nodeType)
		}
	}
	delete(g.indexed, id)
}

// AddNode inserts a node. If a node with the same id exists the call becomes UpdateNode.
func (g *KnowledgeGraph) AddNode(n *types.Node) (*types.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("add node: %w", types.ErrEmptyID)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}
	if _, exists := g.nodes[n.ID]; exists {
		return g.UpdateNode(n)
	}

	g.nodes[n.ID] = n
	g.index(n)
	g.stamp(n.ID)
	return n, nil
}

// UpdateNode replaces a stored node, refreshing its indices and UpdatedAt.
// It returns ErrNotFound when no node has the same id.
func (g *KnowledgeGraph) UpdateNode(n *types.Node) (*types.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("update node: %w", types.ErrEmptyID)
	}
	prev, ok := g.nodes[n.ID]
	if !ok {
		return nil, fmt.Errorf("update node %s: %w", n.ID, types.ErrNotFound)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("update node: %w", err)
	}

	g.unindex(n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = prev.CreatedAt
	}
	n.Touch()
	g.nodes[n.ID] = n
	g.index(n)
	return n, nil
}

// GetNode returns the node with the given id.
func (g *KnowledgeGraph) GetNode(id string) (*types.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// RemoveNode deletes a node and every relation touching it.
func (g *KnowledgeGraph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("remove node %s: %w", id, types.ErrNotFound)
	}

	var touching []string
	for _, rels := range g.out[id] {
		for relID := range rels {
			touching = append(touching, relID)
		}
	}
	for _, rels := range g.in[id] {
		for relID := range rels {
			touching = append(touching, relID)
		}
	}
	for _, relID := range touching {
		if _, ok := g.relations[relID]; ok {
			g.removeRelation(relID)
		}
	}

	g.unindex(id)
	delete(g.nodes, id)
	delete(g.out, id)
	delete(g.in, id)
	delete(g.seq, id)
	return nil
}

// NodeQuery filters FindNodes. Zero-valued fields do not filter.
type NodeQuery struct {
	// Name matches as a case-insensitive substring.
	Name string
	Type types.NodeType
	// Properties must all be present with equal values.
	Properties types.Properties
}

// FindNodes returns the nodes matching every given filter, in insertion order.
func (g *KnowledgeGraph) FindNodes(q NodeQuery) []*types.Node {
	needle := normalizeName(q.Name)

	var candidates set
	switch {
	case q.Type != "":
		candidates = g.typeIndex[q.Type]
	case needle != "":
		candidates = make(set)
		for name, ids := range g.nameIndex {
			if strings.Contains(name, needle) {
				for id := range ids {
					candidates[id] = struct{}{}
				}
			}
		}
	default:
		candidates = make(set, len(g.nodes))
		for id := range g.nodes {
			candidates[id] = struct{}{}
		}
	}

	var out []*types.Node
	for id := range candidates {
		n := g.nodes[id]
		if n == nil {
			continue
		}
		if needle != "" && !strings.Contains(normalizeName(n.Name), needle) {
			continue
		}
		if q.Type != "" && n.Type != q.Type {
			continue
		}
		if !n.Properties.Matches(q.Properties) {
			continue
		}
		out = append(out, n)
	}
	g.sortNodes(out)
	return out
}

// Nodes returns every node in insertion order.
func (g *KnowledgeGraph) Nodes() []*types.Node {
	out := make([]*types.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	g.sortNodes(out)
	return out
}

func (g *KnowledgeGraph) sortNodes(nodes []*types.Node) {
	sort.Slice(nodes, func(i, j int) bool { return g.seq[nodes[i].ID] < g.seq[nodes[j].ID] })
}

func (g *KnowledgeGraph) sortRelations(rels []*types.Relation) {
	sort.Slice(rels, func(i, j int) bool { return g.seq[rels[i].ID] < g.seq[rels[j].ID] })
}

func (g *KnowledgeGraph) link(r *types.Relation) {
	if g.out[r.SourceID] == nil {
		g.out[r.SourceID] = make(map[string]set)
	}
	if g.out[r.SourceID][r.TargetID] == nil {
		g.out[r.SourceID][r.TargetID] = make(set)
	}
	g.out[r.SourceID][r.TargetID][r.ID] = struct{}{}

	if g.in[r.TargetID] == nil {
		g.in[r.TargetID] = make(map[string]set)
	}
	if g.in[r.TargetID][r.SourceID] == nil {
		g.in[r.TargetID][r.SourceID] = make(set)
	}
	g.in[r.TargetID][r.SourceID][r.ID] = struct{}{}

	g.endpoints[r.ID] = [2]string{r.SourceID, r.TargetID}
}

func (g *KnowledgeGraph) unlink(relID string) {
	ends, ok := g.endpoints[relID]
	if !ok {
		return
	}
	src, dst := ends[0], ends[1]
	if targets := g.out[src]; targets != nil {
		delete(targets[dst], relID)
		if len(targets[dst]) == 0 {
			delete(targets, dst)
		}
	}
	if sources := g.in[dst]; sources != nil {
		delete(sources[src], relID)
		if len(sources[src]) == 0 {
			delete(sources, src)
		}
	}
	delete(g.endpoints, relID)
}

func (g *KnowledgeGraph) checkEndpoints(r *types.Relation) error {
	if _, ok := g.nodes[r.SourceID]; !ok {
		return fmt.Errorf("relation %s: source %s: %w", r.ID, r.SourceID, types.ErrDanglingEndpoint)
	}
	if _, ok := g.nodes[r.TargetID]; !ok {
		return fmt.Errorf("relation %s: target %s: %w", r.ID, r.TargetID, types.ErrDanglingEndpoint)
	}
	return nil
}

// AddRelation inserts a relation. Both endpoints must already be in the graph,
// otherwise ErrDanglingEndpoint is returned and the graph is unchanged. If a
// relation with the same id exists the call becomes UpdateRelation.
func (g *KnowledgeGraph) AddRelation(r *types.Relation) (*types.Relation, error) {
	if r == nil {
		return nil, fmt.Errorf("add relation: %w", types.ErrEmptyID)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("add relation: %w", err)
	}
	if _, exists := g.relations[r.ID]; exists {
		return g.UpdateRelation(r)
	}
	if err := g.checkEndpoints(r); err != nil {
		return nil, err
	}

	g.relations[r.ID] = r
	g.link(r)
	g.stamp(r.ID)
	return r, nil
}

// UpdateRelation replaces a stored relation and re-keys it in the adjacency view.
// It returns ErrNotFound when no relation has the same id.
func (g *KnowledgeGraph) UpdateRelation(r *types.Relation) (*types.Relation, error) {
	if r == nil {
		return nil, fmt.Errorf("update relation: %w", types.ErrEmptyID)
	}
	prev, ok := g.relations[r.ID]
	if !ok {
		return nil, fmt.Errorf("update relation %s: %w", r.ID, types.ErrNotFound)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("update relation: %w", err)
	}
	if err := g.checkEndpoints(r); err != nil {
		return nil, err
	}

	g.unlink(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = prev.CreatedAt
	}
	r.Touch()
	g.relations[r.ID] = r
	g.link(r)
	return r, nil
}

// GetRelation returns the relation with the given id.
func (g *KnowledgeGraph) GetRelation(id string) (*types.Relation, bool) {
	r, ok := g.relations[id]
	return r, ok
}

// RemoveRelation deletes a relation.
func (g *KnowledgeGraph) RemoveRelation(id string) error {
	if _, ok := g.relations[id]; !ok {
		return fmt.Errorf("remove relation %s: %w", id, types.ErrNotFound)
	}
	g.removeRelation(id)
	return nil
}

func (g *KnowledgeGraph) removeRelation(id string) {
	g.unlink(id)
	delete(g.relations, id)
	delete(g.seq, id)
}

// RelationQuery filters FindRelations. Zero-valued fields do not filter.
type RelationQuery struct {
	SourceID string
	TargetID string
	Type     types.RelationType
}

// FindRelations returns the relations matching every given filter, in insertion order.
func (g *KnowledgeGraph) FindRelations(q RelationQuery) []*types.Relation {
	ids := make(set)
	switch {
	case q.SourceID != "":
		for target, rels := range g.out[q.SourceID] {
			if q.TargetID != "" && target != q.TargetID {
				continue
			}
			for id := range rels {
				ids[id] = struct{}{}
			}
		}
	case q.TargetID != "":
		for _, rels := range g.in[q.TargetID] {
			for id := range rels {
				ids[id] = struct{}{}
			}
		}
	default:
		for id := range g.relations {
			ids[id] = struct{}{}
		}
	}

	var out []*types.Relation
	for id := range ids {
		r := g.relations[id]
		if r == nil {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		out = append(out, r)
	}
	g.sortRelations(out)
	return out
}

// Relations returns every relation in insertion order.
func (g *KnowledgeGraph) Relations() []*types.Relation {
	out := make([]*types.Relation, 0, len(g.relations))
	for _, r := range g.relations {
		out = append(out, r)
	}
	g.sortRelations(out)
	return out
}

// Neighbor is one hop from a node: the relation and both of its endpoints.
type Neighbor struct {
	Source   *types.Node
	Relation *types.Relation
	Target   *types.Node
}

// GetNeighbors returns the relations adjacent to nodeID in the given direction,
// optionally restricted to relTypes. An unknown node yields no neighbors.
func (g *KnowledgeGraph) GetNeighbors(nodeID string, dir Direction, relTypes ...types.RelationType) []Neighbor {
	if _, ok := g.nodes[nodeID]; !ok {
		return nil
	}

	allowed := func(t types.RelationType) bool {
		if len(relTypes) == 0 {
			return true
		}
		for _, want := range relTypes {
			if t == want {
				return true
			}
		}
		return false
	}

	ids := make(set)
	if dir == Outgoing || dir == Both {
		for _, rels := range g.out[nodeID] {
			for id := range rels {
				ids[id] = struct{}{}
			}
		}
	}
	if dir == Incoming || dir == Both {
		for _, rels := range g.in[nodeID] {
			for id := range rels {
				ids[id] = struct{}{}
			}
		}
	}

	rels := make([]*types.Relation, 0, len(ids))
	for id := range ids {
		if r := g.relations[id]; r != nil && allowed(r.Type) {
			rels = append(rels, r)
		}
	}
	g.sortRelations(rels)

	out := make([]Neighbor, 0, len(rels))
	for _, r := range rels {
		out = append(out, Neighbor{Source: g.nodes[r.SourceID], Relation: r, Target: g.nodes[r.TargetID]})
	}
	return out
}
