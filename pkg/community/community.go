// Package community groups the nodes of a knowledge graph into communities
// by label propagation. In a hybrid graph a community that holds both UX and
// design nodes marks feedback that the reference material speaks to.
package community

import (
	"sort"

	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
)

// MaxIterations bounds label propagation.
const MaxIterations = 100

// Member is one node of a community.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Community is a cluster of at least two nodes.
type Community struct {
	ID      int      `json:"id"`
	Members []Member `json:"members"`
	// DominantCategory is the most common member category, "" when none is set.
	DominantCategory string `json:"dominant_category,omitempty"`
	// CrossSource is true when members come from more than one source.
	CrossSource bool `json:"cross_source"`
}

// Size is the number of members.
func (c Community) Size() int { return len(c.Members) }

type neighbor struct {
	node  int
	count int
}

// Detect runs label propagation over g, optionally following only relTypes.
// Parallel relations count once each, so a pair joined by both a symbolic and
// a similarity edge pulls harder than a pair joined by one. Singleton
// clusters are dropped. Communities are ordered by size, largest first, and
// members by insertion order.
func Detect(g *graph.KnowledgeGraph, relTypes ...types.RelationType) []Community {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	projection := make([][]neighbor, len(nodes))
	for i, n := range nodes {
		counts := make(map[int]int)
		var order []int
		for _, nb := range g.GetNeighbors(n.ID, graph.Both, relTypes...) {
			other := nb.Target
			if other.ID == n.ID {
				other = nb.Source
			}
			if other.ID == n.ID {
				continue
			}
			j := index[other.ID]
			if _, seen := counts[j]; !seen {
				order = append(order, j)
			}
			counts[j]++
		}
		for _, j := range order {
			projection[i] = append(projection[i], neighbor{node: j, count: counts[j]})
		}
	}

	labels := propagate(projection)

	groups := make(map[int][]int)
	var labelOrder []int
	for i, l := range labels {
		if _, seen := groups[l]; !seen {
			labelOrder = append(labelOrder, l)
		}
		groups[l] = append(groups[l], i)
	}

	var out []Community
	for _, l := range labelOrder {
		members := groups[l]
		if len(members) < 2 {
			continue
		}
		out = append(out, newCommunity(nodes, members))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size() > out[j].Size() })
	for i := range out {
		out[i].ID = i
	}
	return out
}

// propagate updates labels in place, node by node, until no label changes.
// A node adopts the label with the highest edge count among its neighbors,
// ties going to the larger label. A label backed by a single edge only
// replaces a smaller one.
func propagate(projection [][]neighbor) []int {
	labels := make([]int, len(projection))
	for i := range labels {
		labels[i] = i
	}

	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		for i, neighbors := range projection {
			if len(neighbors) == 0 {
				continue
			}
			scores := make(map[int]int)
			for _, nb := range neighbors {
				scores[labels[nb.node]] += nb.count
			}
			best, bestCount := -1, 0
			for l, c := range scores {
				if c > bestCount || (c == bestCount && l > best) {
					best, bestCount = l, c
				}
			}

			next := labels[i]
			if bestCount > 1 || best > next {
				next = best
			}
			if next != labels[i] {
				labels[i] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return labels
}

func newCommunity(nodes []*types.Node, members []int) Community {
	c := Community{Members: make([]Member, 0, len(members))}
	categories := make(map[string]int)
	sources := make(map[string]struct{})
	var catOrder []string

	for _, i := range members {
		n := nodes[i]
		m := Member{ID: n.ID, Name: n.Name}
		m.Category, _ = n.Properties.GetString(types.PropCategory)
		m.Source, _ = n.Properties.GetString(types.PropSource)
		c.Members = append(c.Members, m)

		if m.Category != "" {
			if categories[m.Category] == 0 {
				catOrder = append(catOrder, m.Category)
			}
			categories[m.Category]++
		}
		if m.Source != "" {
			sources[m.Source] = struct{}{}
		}
	}

	best := 0
	for _, cat := range catOrder {
		if categories[cat] > best {
			c.DominantCategory, best = cat, categories[cat]
		}
	}
	c.CrossSource = len(sources) > 1
	return c
}
