package report

import (
	"sort"

	"github.com/soundprediction/hskg/pkg/community"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
)

// Hub is a node ranked by how many relations touch it.
type Hub struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Degree int    `json:"degree"`
}

// GraphReport summarises a knowledge graph for reporting.
type GraphReport struct {
	Name  string      `json:"name"`
	Stats graph.Stats `json:"stats"`
	// CrossSource counts relations joining nodes with different "source" properties.
	CrossSource int                   `json:"cross_source_relations"`
	Hubs        []Hub                 `json:"hubs"`
	Communities []community.Community `json:"communities"`
}

// Summarize builds a GraphReport with the topHubs best-connected nodes and
// the graph's communities. Hub ties are broken by node name.
func Summarize(kg *graph.KnowledgeGraph, topHubs int) GraphReport {
	rep := GraphReport{Name: kg.Name(), Stats: kg.Stats()}

	for _, r := range kg.Relations() {
		src, _ := kg.GetNode(r.SourceID)
		dst, _ := kg.GetNode(r.TargetID)
		a, _ := src.Properties.GetString(types.PropSource)
		b, _ := dst.Properties.GetString(types.PropSource)
		if a != "" && b != "" && a != b {
			rep.CrossSource++
		}
	}

	rep.Communities = community.Detect(kg)

	if topHubs <= 0 {
		return rep
	}
	hubs := make([]Hub, 0, kg.NodeCount())
	for _, n := range kg.Nodes() {
		hubs = append(hubs, Hub{ID: n.ID, Name: n.Name, Degree: len(kg.GetNeighbors(n.ID, graph.Both))})
	}
	sort.SliceStable(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].Name < hubs[j].Name
	})
	if len(hubs) > topHubs {
		hubs = hubs[:topHubs]
	}
	rep.Hubs = hubs
	return rep
}
