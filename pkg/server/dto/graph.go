package dto

import (
	"errors"
	"fmt"

	"github.com/soundprediction/hskg/pkg/storage"
	"github.com/soundprediction/hskg/pkg/types"
)

// Limits on request sizes
const (
	MaxItemsCount = 10000
	MaxTextsCount = 2048
)

var (
	ErrEmptyItems   = errors.New("items cannot be empty")
	ErrTooManyItems = fmt.Errorf("items count exceeds maximum (%d)", MaxItemsCount)
	ErrEmptyTexts   = errors.New("texts cannot be empty")
	ErrTooManyTexts = fmt.Errorf("texts count exceeds maximum (%d)", MaxTextsCount)
	ErrBadThreshold = errors.New("threshold must be between -1 and 1")
	ErrNoEdgeLayers = errors.New("at least one edge layer must be enabled")
)

// BuildGraphRequest asks the server to build, and optionally store, a graph.
type BuildGraphRequest struct {
	Name            string                    `json:"name"`
	Items           []types.HeterogeneousItem `json:"items" binding:"required"`
	Threshold       *float64                  `json:"threshold,omitempty"`
	SymbolicEdges   *bool                     `json:"symbolic_edges,omitempty"`
	SimilarityEdges *bool                     `json:"similarity_edges,omitempty"`
	Save            bool                      `json:"save"`
}

// Validate performs validation on BuildGraphRequest
func (r *BuildGraphRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyItems
	}
	if len(r.Items) > MaxItemsCount {
		return ErrTooManyItems
	}
	if r.Threshold != nil && (*r.Threshold < -1 || *r.Threshold > 1) {
		return ErrBadThreshold
	}
	if r.SymbolicEdges != nil && r.SimilarityEdges != nil && !*r.SymbolicEdges && !*r.SimilarityEdges {
		return ErrNoEdgeLayers
	}
	for i := range r.Items {
		if err := r.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// BuildGraphResponse reports the outcome of a build.
type BuildGraphResponse struct {
	GraphID         string  `json:"graph_id,omitempty"`
	Name            string  `json:"name"`
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	SymbolicEdges   int     `json:"symbolic_edges"`
	SimilarityEdges int     `json:"similarity_edges"`
	Density         float64 `json:"density"`
	// Graph is the built graph in document form.
	Graph interface{} `json:"graph"`
}

// GraphListResponse lists stored graphs.
type GraphListResponse struct {
	Graphs []storage.GraphInfo `json:"graphs"`
	Total  int                 `json:"total"`
}

// NeighborResult is one adjacent relation of a node.
type NeighborResult struct {
	RelationID string             `json:"relation_id"`
	Type       types.RelationType `json:"type"`
	Kind       types.EdgeKind     `json:"kind,omitempty"`
	Weight     *float64           `json:"weight,omitempty"`
	Label      string             `json:"label,omitempty"`
	SourceID   string             `json:"source_id"`
	TargetID   string             `json:"target_id"`
	// Node is the node at the far end of the relation.
	Node *types.Node `json:"node"`
}

// NeighborsResponse lists a node's neighbors.
type NeighborsResponse struct {
	NodeID    string           `json:"node_id"`
	Direction string           `json:"direction"`
	Neighbors []NeighborResult `json:"neighbors"`
	Total     int              `json:"total"`
}

// EmbedRequest asks for embeddings of texts.
type EmbedRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

// Validate performs validation on EmbedRequest
func (r *EmbedRequest) Validate() error {
	if len(r.Texts) == 0 {
		return ErrEmptyTexts
	}
	if len(r.Texts) > MaxTextsCount {
		return ErrTooManyTexts
	}
	for i, t := range r.Texts {
		if t == "" {
			return fmt.Errorf("text %d: %w", i, types.ErrEmptyText)
		}
	}
	return nil
}

// EmbedResponse holds one vector per requested text.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
}
