package types

import (
	"time"

	"github.com/google/uuid"
)

// Relation is a typed, directed link between two nodes.
//
// Endpoints are referenced by node id; the owning graph guarantees both
// endpoints exist. Identity is by ID.
type Relation struct {
	ID         string       `json:"id" mapstructure:"id"`
	SourceID   string       `json:"source_id" mapstructure:"source_id"`
	TargetID   string       `json:"target_id" mapstructure:"target_id"`
	Type       RelationType `json:"type" mapstructure:"type"`
	Properties Properties   `json:"properties" mapstructure:"properties"`
	CreatedAt  time.Time    `json:"created_at" mapstructure:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" mapstructure:"updated_at"`
}

// NewRelation creates a relation with a fresh id between the given endpoints.
func NewRelation(sourceID, targetID string, relType RelationType, props Properties) (*Relation, error) {
	if sourceID == "" || targetID == "" {
		return nil, ErrMissingEndpoint
	}
	ts := now()
	return &Relation{
		ID:         uuid.New().String(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Properties: props.Clone(),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}, nil
}

// NewRelationBetween is NewRelation for two nodes.
func NewRelationBetween(source, target *Node, relType RelationType, props Properties) (*Relation, error) {
	if source == nil || target == nil {
		return nil, ErrMissingEndpoint
	}
	return NewRelation(source.ID, target.ID, relType, props)
}

// Validate checks if the Relation has all required fields set.
func (r *Relation) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.SourceID == "" || r.TargetID == "" {
		return ErrMissingEndpoint
	}
	if !r.Type.Valid() {
		return ErrInvalidRelationType
	}
	return nil
}

// Key returns the identity key of the relation.
func (r *Relation) Key() string { return r.ID }

// Equal reports whether r and other are the same relation.
func (r *Relation) Equal(other *Relation) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID
}

// Touch advances UpdatedAt.
func (r *Relation) Touch() { r.UpdatedAt = now() }

// SetProperty stores a property value.
func (r *Relation) SetProperty(key string, value PropertyValue) {
	if r.Properties == nil {
		r.Properties = Properties{}
	}
	r.Properties[key] = value
	r.Touch()
}

// Kind returns the edge layer the relation belongs to, or "" when it is not layered.
func (r *Relation) Kind() EdgeKind {
	s, _ := r.Properties.GetString(PropKind)
	return EdgeKind(s)
}

// Weight returns the similarity weight of a similarity edge.
func (r *Relation) Weight() (float64, bool) {
	return r.Properties.GetNumber(PropWeight)
}

// Label returns the category label of a symbolic edge.
func (r *Relation) Label() (string, bool) {
	return r.Properties.GetString(PropLabel)
}

// Clone returns a deep copy of the relation.
func (r *Relation) Clone() *Relation {
	cp := *r
	cp.Properties = r.Properties.Clone()
	return &cp
}
