package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/hskg/pkg/builder"
)

// NodeRow is the parquet form of a built node.
type NodeRow struct {
	Index     int       `parquet:"index"`
	Text      string    `parquet:"text"`
	Category  string    `parquet:"category"`
	Modality  string    `parquet:"modality"`
	Source    string    `parquet:"source"`
	Embedding []float32 `parquet:"embedding,list"`
}

// EdgeRow is the parquet form of a built edge.
type EdgeRow struct {
	Source     int     `parquet:"source"`
	Target     int     `parquet:"target"`
	SourceText string  `parquet:"source_text"`
	TargetText string  `parquet:"target_text"`
	Kind       string  `parquet:"kind"`
	Weight     float64 `parquet:"weight"`
	Label      string  `parquet:"label"`
}

// Export file names inside the output directory.
const (
	NodesFile = "nodes.parquet"
	EdgesFile = "edges.parquet"
)

// ExportParquet writes g's nodes and edges to dir/nodes.parquet and dir/edges.parquet.
func ExportParquet(dir string, g *builder.Graph) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	nodes := make([]NodeRow, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = NodeRow{
			Index:     n.Index,
			Text:      n.Text,
			Category:  n.Category,
			Modality:  string(n.Modality),
			Source:    string(n.Source),
			Embedding: n.Embedding,
		}
	}
	if err := parquet.WriteFile(filepath.Join(dir, NodesFile), nodes); err != nil {
		return fmt.Errorf("failed to write nodes parquet: %w", err)
	}

	edges := make([]EdgeRow, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = EdgeRow{
			Source:     e.Source,
			Target:     e.Target,
			SourceText: g.Nodes[e.Source].Text,
			TargetText: g.Nodes[e.Target].Text,
			Kind:       string(e.Kind),
			Weight:     e.Weight,
			Label:      e.Label,
		}
	}
	if err := parquet.WriteFile(filepath.Join(dir, EdgesFile), edges); err != nil {
		return fmt.Errorf("failed to write edges parquet: %w", err)
	}
	return nil
}

// ReadEdges reads an edges file written by ExportParquet.
func ReadEdges(path string) ([]EdgeRow, error) {
	rows, err := parquet.ReadFile[EdgeRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edges parquet: %w", err)
	}
	return rows, nil
}

// ReadNodes reads a nodes file written by ExportParquet.
func ReadNodes(path string) ([]NodeRow, error) {
	rows, err := parquet.ReadFile[NodeRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes parquet: %w", err)
	}
	return rows, nil
}
