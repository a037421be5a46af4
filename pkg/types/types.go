package types

import (
	"errors"
	"fmt"
	"strings"
)

// Core errors
var (
	// ErrShapeMismatch is returned when parallel inputs disagree in length or dimension.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrNotFound is returned when an update or load targets an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrDanglingEndpoint is returned when a relation references a node that is not in the graph.
	ErrDanglingEndpoint = errors.New("dangling relation endpoint")
	// ErrUnsupportedStorageType is returned when a storage tag has no registered backend.
	ErrUnsupportedStorageType = errors.New("unsupported storage type")
)

// Validation errors
var (
	ErrEmptyID             = errors.New("id cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrInvalidNodeType     = errors.New("invalid node type")
	ErrInvalidRelationType = errors.New("invalid relation type")
	ErrInvalidModality     = errors.New("invalid modality")
	ErrInvalidSource       = errors.New("invalid source")
	ErrRawDataOnText       = errors.New("raw data is only allowed on image items")
	ErrUnsupportedProperty = errors.New("unsupported property value")
	ErrMissingEndpoint     = errors.New("relation endpoints cannot be empty")
	ErrEmbeddingDimension  = errors.New("embedding dimension mismatch")
)

// NodeType represents the type of a node.
type NodeType string

const (
	EntityNodeType   NodeType = "ENTITY"
	ConceptNodeType  NodeType = "CONCEPT"
	DocumentNodeType NodeType = "DOCUMENT"
	UserNodeType     NodeType = "USER"
	ProductNodeType  NodeType = "PRODUCT"
	ReviewNodeType   NodeType = "REVIEW"
	FeatureNodeType  NodeType = "FEATURE"
	CategoryNodeType NodeType = "CATEGORY"
	IntentNodeType   NodeType = "INTENT"
	TopicNodeType    NodeType = "TOPIC"
	CustomNodeType   NodeType = "CUSTOM"
)

// NodeTypes lists every node type in declaration order.
var NodeTypes = []NodeType{
	EntityNodeType, ConceptNodeType, DocumentNodeType, UserNodeType, ProductNodeType,
	ReviewNodeType, FeatureNodeType, CategoryNodeType, IntentNodeType, TopicNodeType,
	CustomNodeType,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t NodeType) String() string { return string(t) }

// ParseNodeType converts a serialized tag into a NodeType. Matching is case-insensitive.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidNodeType, s)
	}
	return t, nil
}

// RelationType represents the type of a relation.
type RelationType string

const (
	IsARelation       RelationType = "IS_A"
	PartOfRelation    RelationType = "PART_OF"
	HasPartRelation   RelationType = "HAS_PART"
	RelatedToRelation RelationType = "RELATED_TO"
	SimilarToRelation RelationType = "SIMILAR_TO"
	CausesRelation    RelationType = "CAUSES"
	PrecedesRelation  RelationType = "PRECEDES"
	LikesRelation     RelationType = "LIKES"
	PrefersRelation   RelationType = "PREFERS"
	RatedRelation     RelationType = "RATED"
	MentionsRelation  RelationType = "MENTIONS"
	DescribesRelation RelationType = "DESCRIBES"
	CustomRelation    RelationType = "CUSTOM"
)

// RelationTypes lists every relation type in declaration order.
var RelationTypes = []RelationType{
	IsARelation, PartOfRelation, HasPartRelation, RelatedToRelation, SimilarToRelation,
	CausesRelation, PrecedesRelation, LikesRelation, PrefersRelation, RatedRelation,
	MentionsRelation, DescribesRelation, CustomRelation,
}

// Valid reports whether t is one of the known relation types.
func (t RelationType) Valid() bool {
	for _, known := range RelationTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t RelationType) String() string { return string(t) }

// ParseRelationType converts a serialized tag into a RelationType. Matching is case-insensitive.
func ParseRelationType(s string) (RelationType, error) {
	t := RelationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRelationType, s)
	}
	return t, nil
}

// EdgeKind distinguishes the two edge layers of a hybrid graph.
type EdgeKind string

const (
	// SymbolicEdge links two items that share a category.
	SymbolicEdge EdgeKind = "symbolic"
	// SimilarityEdge links two items whose embeddings are close enough.
	SimilarityEdge EdgeKind = "similarity"
)

// Property keys used to layer edge kinds onto relations.
const (
	PropKind     = "kind"
	PropWeight   = "weight"
	PropLabel    = "label"
	PropText     = "text"
	PropCategory = "category"
	PropIndex    = "index"
	PropModality = "modality"
	PropSource   = "source"
)
