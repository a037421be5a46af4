package builder

import (
	"fmt"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
)

// ToKnowledgeGraph materialises the built graph as a KnowledgeGraph.
//
// Every built node becomes a CONCEPT node named by its text, with the text,
// category, input index and, for item builds, modality and source stored as
// properties; the embedding is attached. Similarity edges become SIMILAR_TO
// relations and symbolic edges become RELATED_TO relations, each tagged with
// its kind. Edges run from the lower to the higher index.
func (g *Graph) ToKnowledgeGraph(name string) (*graph.KnowledgeGraph, error) {
	kg := graph.New(name)
	ids := make([]string, len(g.Nodes))

	for i, bn := range g.Nodes {
		props := types.Properties{
			types.PropText:  types.String(bn.Text),
			types.PropIndex: types.Number(float64(bn.Index)),
		}
		if bn.Category != "" {
			props[types.PropCategory] = types.String(bn.Category)
		}
		if bn.Modality != "" {
			props[types.PropModality] = types.String(string(bn.Modality))
		}
		if bn.Source != "" {
			props[types.PropSource] = types.String(string(bn.Source))
		}

		n := types.NewNode(types.ConceptNodeType, bn.Text, props)
		if bn.Source != "" {
			n.AddLabel(string(bn.Source))
		}
		if bn.Embedding != nil {
			n.SetEmbedding(bn.Embedding)
		}
		if _, err := kg.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		ids[i] = n.ID
	}

	for _, e := range g.Edges {
		if e.Source < 0 || e.Source >= len(ids) || e.Target < 0 || e.Target >= len(ids) {
			return nil, fmt.Errorf("edge %d-%d: %w", e.Source, e.Target, types.ErrDanglingEndpoint)
		}

		relType := types.RelatedToRelation
		props := types.Properties{types.PropKind: types.String(string(e.Kind))}
		switch e.Kind {
		case types.SimilarityEdge:
			relType = types.SimilarToRelation
			props[types.PropWeight] = types.Number(e.Weight)
		case types.SymbolicEdge:
			props[types.PropLabel] = types.String(e.Label)
		}

		rel, err := types.NewRelation(ids[e.Source], ids[e.Target], relType, props)
		if err != nil {
			return nil, err
		}
		if _, err := kg.AddRelation(rel); err != nil {
			return nil, err
		}
	}
	return kg, nil
}
