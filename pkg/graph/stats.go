package graph

import "github.com/soundprediction/hskg/pkg/types"

// Stats summarises the shape of a knowledge graph.
type Stats struct {
	NodeCount       int            `json:"node_count"`
	RelationCount   int            `json:"relation_count"`
	NodesByType     map[string]int `json:"nodes_by_type"`
	RelationsByType map[string]int `json:"relations_by_type"`
	SymbolicEdges   int            `json:"symbolic_edges"`
	SimilarityEdges int            `json:"similarity_edges"`
	// Density is 2|E| / (|V|(|V|-1)), or 0 with fewer than two nodes.
	Density float64 `json:"density"`
}

// Density returns 2e / (n(n-1)), the undirected edge density of a multigraph
// with n nodes and e edges. It is 0 when n < 2.
func Density(nodes, edges int) float64 {
	if nodes < 2 {
		return 0
	}
	return 2 * float64(edges) / (float64(nodes) * float64(nodes-1))
}

// Stats computes counts, the edge-kind breakdown and density.
func (g *KnowledgeGraph) Stats() Stats {
	s := Stats{
		NodeCount:       len(g.nodes),
		RelationCount:   len(g.relations),
		NodesByType:     make(map[string]int),
		RelationsByType: make(map[string]int),
	}
	for _, n := range g.nodes {
		s.NodesByType[string(n.Type)]++
	}
	for _, r := range g.relations {
		s.RelationsByType[string(r.Type)]++
		switch r.Kind() {
		case types.SymbolicEdge:
			s.SymbolicEdges++
		case types.SimilarityEdge:
			s.SimilarityEdges++
		}
	}
	s.Density = Density(s.NodeCount, s.RelationCount)
	return s
}
