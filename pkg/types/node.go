package types

import (
	"time"

	"github.com/google/uuid"
)

// now returns the current time in UTC. Tests may replace it.
var now = func() time.Time { return time.Now().UTC() }

// Node represents a concept in the knowledge graph.
//
// Identity is by ID: two nodes with equal IDs are the same node regardless of
// their other fields.
type Node struct {
	ID         string     `json:"id" mapstructure:"id"`
	Type       NodeType   `json:"type" mapstructure:"type"`
	Name       string     `json:"name" mapstructure:"name"`
	Properties Properties `json:"properties" mapstructure:"properties"`
	Labels     []string   `json:"labels" mapstructure:"labels"`
	// Embedding is nil when the node has no vector.
	Embedding []float32 `json:"-" mapstructure:"-"`
	CreatedAt time.Time `json:"created_at" mapstructure:"created_at"`
	UpdatedAt time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// NewNode creates a node with a fresh id. The label set is seeded with the type tag.
func NewNode(nodeType NodeType, name string, props Properties) *Node {
	ts := now()
	return &Node{
		ID:         uuid.New().String(),
		Type:       nodeType,
		Name:       name,
		Properties: props.Clone(),
		Labels:     []string{string(nodeType)},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if !n.Type.Valid() {
		return ErrInvalidNodeType
	}
	return nil
}

// Key returns the identity key of the node.
func (n *Node) Key() string { return n.ID }

// Equal reports whether n and other are the same node.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.ID == other.ID
}

// HasEmbedding reports whether the node carries a vector.
func (n *Node) HasEmbedding() bool { return n.Embedding != nil }

// Touch advances UpdatedAt.
func (n *Node) Touch() { n.UpdatedAt = now() }

// Rename changes the node name.
func (n *Node) Rename(name string) {
	n.Name = name
	n.Touch()
}

// Retype changes the node type and adds the new tag to the label set.
func (n *Node) Retype(nodeType NodeType) {
	n.Type = nodeType
	n.addLabel(string(nodeType))
	n.Touch()
}

// SetProperty stores a property value.
func (n *Node) SetProperty(key string, value PropertyValue) {
	if n.Properties == nil {
		n.Properties = Properties{}
	}
	n.Properties[key] = value
	n.Touch()
}

// GetProperty returns the value stored under key.
func (n *Node) GetProperty(key string) (PropertyValue, bool) {
	v, ok := n.Properties[key]
	return v, ok
}

// AddLabel adds a label. Labels have set semantics.
func (n *Node) AddLabel(label string) {
	if n.addLabel(label) {
		n.Touch()
	}
}

func (n *Node) addLabel(label string) bool {
	if n.HasLabel(label) {
		return false
	}
	n.Labels = append(n.Labels, label)
	return true
}

// HasLabel reports whether label is in the label set.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// SetEmbedding attaches a vector to the node. A nil slice removes it.
func (n *Node) SetEmbedding(embedding []float32) {
	if embedding == nil {
		n.Embedding = nil
	} else {
		n.Embedding = append([]float32(nil), embedding...)
	}
	n.Touch()
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Properties = n.Properties.Clone()
	cp.Labels = append([]string(nil), n.Labels...)
	if n.Embedding != nil {
		cp.Embedding = append([]float32(nil), n.Embedding...)
	}
	return &cp
}
