package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/soundprediction/hskg/pkg/types"
)

// Document is the serialized form of a knowledge graph.
//
// Nodes carry only an embedding presence flag, not the vector itself.
type Document struct {
	Name      string           `json:"name"`
	Nodes     []NodeRecord     `json:"nodes"`
	Relations []RelationRecord `json:"relations"`
}

// NodeRecord is the serialized form of a node.
type NodeRecord struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Name         string           `json:"name"`
	Properties   types.Properties `json:"properties"`
	Labels       []string         `json:"labels"`
	HasEmbedding bool             `json:"has_embedding"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// RelationRecord is the serialized form of a relation.
type RelationRecord struct {
	ID         string           `json:"id"`
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
	Type       string           `json:"type"`
	Properties types.Properties `json:"properties"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewNodeRecord converts a node into its serialized form.
func NewNodeRecord(n *types.Node) NodeRecord {
	return NodeRecord{
		ID:           n.ID,
		Type:         string(n.Type),
		Name:         n.Name,
		Properties:   n.Properties.Clone(),
		Labels:       append([]string{}, n.Labels...),
		HasEmbedding: n.HasEmbedding(),
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

// Node converts the record back into a node. The embedding is never restored.
func (r NodeRecord) Node() (*types.Node, error) {
	nodeType, err := types.ParseNodeType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", r.ID, err)
	}
	labels := append([]string{}, r.Labels...)
	if len(labels) == 0 {
		labels = []string{string(nodeType)}
	}
	return &types.Node{
		ID:         r.ID,
		Type:       nodeType,
		Name:       r.Name,
		Properties: r.Properties.Clone(),
		Labels:     labels,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

// NewRelationRecord converts a relation into its serialized form.
func NewRelationRecord(r *types.Relation) RelationRecord {
	return RelationRecord{
		ID:         r.ID,
		SourceID:   r.SourceID,
		TargetID:   r.TargetID,
		Type:       string(r.Type),
		Properties: r.Properties.Clone(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Relation converts the record back into a relation.
func (r RelationRecord) Relation() (*types.Relation, error) {
	relType, err := types.ParseRelationType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("relation %s: %w", r.ID, err)
	}
	return &types.Relation{
		ID:         r.ID,
		SourceID:   r.SourceID,
		TargetID:   r.TargetID,
		Type:       relType,
		Properties: r.Properties.Clone(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

// ToDocument serializes the graph. Nodes and relations appear in insertion order.
func (g *KnowledgeGraph) ToDocument() *Document {
	doc := &Document{
		Name:      g.name,
		Nodes:     make([]NodeRecord, 0, len(g.nodes)),
		Relations: make([]RelationRecord, 0, len(g.relations)),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NewNodeRecord(n))
	}
	for _, r := range g.Relations() {
		doc.Relations = append(doc.Relations, NewRelationRecord(r))
	}
	return doc
}

// FromDocument rebuilds a graph from its serialized form. Nodes are
// materialised first; a relation whose endpoint is missing fails with
// ErrDanglingEndpoint. Stored timestamps are kept as they were.
func FromDocument(doc *Document) (*KnowledgeGraph, error) {
	if doc == nil {
		return New(""), nil
	}
	g := New(doc.Name)
	for _, rec := range doc.Nodes {
		n, err := rec.Node()
		if err != nil {
			return nil, err
		}
		if err := g.restoreNode(n); err != nil {
			return nil, err
		}
	}
	for _, rec := range doc.Relations {
		r, err := rec.Relation()
		if err != nil {
			return nil, err
		}
		if err := g.restoreRelation(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// restoreNode inserts a node without touching its timestamps.
func (g *KnowledgeGraph) restoreNode(n *types.Node) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("restore node: %w", err)
	}
	if _, exists := g.nodes[n.ID]; exists {
		g.unindex(n.ID)
	}
	g.nodes[n.ID] = n
	g.index(n)
	g.stamp(n.ID)
	return nil
}

// restoreRelation inserts a relation without touching its timestamps.
func (g *KnowledgeGraph) restoreRelation(r *types.Relation) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("restore relation: %w", err)
	}
	if err := g.checkEndpoints(r); err != nil {
		return err
	}
	if _, exists := g.relations[r.ID]; exists {
		g.unlink(r.ID)
	}
	g.relations[r.ID] = r
	g.link(r)
	g.stamp(r.ID)
	return nil
}

// Restore inserts a persisted node, keeping its timestamps. Storage backends use it.
func (g *KnowledgeGraph) Restore(n *types.Node) error { return g.restoreNode(n) }

// RestoreRelation inserts a persisted relation, keeping its timestamps.
// A missing endpoint fails with ErrDanglingEndpoint.
func (g *KnowledgeGraph) RestoreRelation(r *types.Relation) error { return g.restoreRelation(r) }

// MarshalJSON encodes the graph as its Document form.
func (g *KnowledgeGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToDocument())
}

// WriteJSON writes the graph document to w.
func (g *KnowledgeGraph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.ToDocument()); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph document from r.
func ReadJSON(r io.Reader) (*KnowledgeGraph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return FromDocument(&doc)
}

// SaveFile writes the graph document to path.
func (g *KnowledgeGraph) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := g.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a graph document from path.
func LoadFile(path string) (*KnowledgeGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
