package report

import (
	"fmt"

	"github.com/soundprediction/hskg/pkg/builder"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/soundprediction/hskg/pkg/utils"
)

// DefaultK is the retrieval depth used when none is given.
const DefaultK = 5

// Recall is the outcome of a recall@k run: the fraction of queries with at
// least one of their top k matches at or above Theta.
type Recall struct {
	K          int     `json:"k"`
	Theta      float64 `json:"theta"`
	Queries    int     `json:"queries"`
	Hits       int     `json:"hits"`
	RecallAtK  float64 `json:"recall_at_k"`
	AvgTopKSim float64 `json:"avg_topk_sim"`
}

// RecallAtK ranks corpus rows by cosine similarity to each query row and
// reports how many queries find a match >= theta within their top k.
func RecallAtK(queries, corpus [][]float32, k int, theta float64) (Recall, error) {
	if k <= 0 {
		k = DefaultK
	}
	r := Recall{K: k, Theta: theta, Queries: len(queries)}
	if len(queries) == 0 || len(corpus) == 0 {
		return r, nil
	}

	sims, err := utils.CrossCosine(queries, corpus)
	if err != nil {
		return r, fmt.Errorf("recall@%d: %w", k, err)
	}

	var simSum float64
	var simCount int
	for _, row := range sims {
		hit := false
		for _, j := range utils.TopKIndicesByScore(row, k) {
			simSum += row[j]
			simCount++
			if row[j] >= theta {
				hit = true
			}
		}
		if hit {
			r.Hits++
		}
	}
	r.RecallAtK = float64(r.Hits) / float64(len(queries))
	if simCount > 0 {
		r.AvgTopKSim = simSum / float64(simCount)
	}
	return r, nil
}

// CooccurrenceRecall is the symbolic-only baseline: the fraction of UX items
// whose category is shared by at least one design item.
func CooccurrenceRecall(items []types.HeterogeneousItem) float64 {
	designCategories := make(map[string]struct{})
	for _, it := range items {
		if it.Source == types.DesignSource && it.HasCategory() {
			designCategories[it.Category] = struct{}{}
		}
	}

	var ux, hits int
	for _, it := range items {
		if it.Source != types.UXSource {
			continue
		}
		ux++
		if _, ok := designCategories[it.Category]; ok && it.HasCategory() {
			hits++
		}
	}
	if ux == 0 {
		return 0
	}
	return float64(hits) / float64(ux)
}

// SplitBySource returns the embeddings of UX items and of design items, in input order.
func SplitBySource(items []types.HeterogeneousItem) (ux, design [][]float32) {
	for _, it := range items {
		switch it.Source {
		case types.UXSource:
			ux = append(ux, it.Embedding)
		case types.DesignSource:
			design = append(design, it.Embedding)
		}
	}
	return ux, design
}

// CrossSourceEdges counts edges of kind (all kinds when empty) that join a
// UX node to a design node.
func CrossSourceEdges(g *builder.Graph, kind types.EdgeKind) int {
	var n int
	for _, e := range g.Edges {
		if kind != "" && e.Kind != kind {
			continue
		}
		a, b := g.Nodes[e.Source].Source, g.Nodes[e.Target].Source
		if a != "" && b != "" && a != b {
			n++
		}
	}
	return n
}

// Ablation is one builder configuration evaluated over the same items.
type Ablation struct {
	Name        string        `json:"name"`
	Symbolic    bool          `json:"symbolic"`
	Similarity  bool          `json:"similarity"`
	Stats       builder.Stats `json:"stats"`
	CrossSource int           `json:"cross_source_edges"`
}

// Evaluation gathers the baseline, recall sweeps and ablations of one item set.
type Evaluation struct {
	Items        int        `json:"items"`
	Threshold    float64    `json:"threshold"`
	Cooccurrence float64    `json:"cooccurrence_recall"`
	Semantic     []Recall   `json:"semantic"`
	Ablations    []Ablation `json:"ablations"`
}

// Options configures Evaluate.
type Options struct {
	K         int
	Thetas    []float64
	Threshold float64
	Workers   int
}

// Evaluate runs the co-occurrence baseline, a recall@k sweep over
// opts.Thetas (default 0.6, 0.7, 0.75) and three builds: full, symbolic only
// and similarity only. Every item must carry an embedding.
func Evaluate(items []types.HeterogeneousItem, opts Options) (*Evaluation, error) {
	if opts.Threshold == 0 {
		opts.Threshold = builder.DefaultThreshold
	}
	if len(opts.Thetas) == 0 {
		opts.Thetas = []float64{0.6, 0.7, 0.75}
	}
	for i := range items {
		if !items[i].HasEmbedding() {
			return nil, fmt.Errorf("%w: item %d has no embedding", types.ErrShapeMismatch, i)
		}
	}

	ev := &Evaluation{
		Items:        len(items),
		Threshold:    opts.Threshold,
		Cooccurrence: CooccurrenceRecall(items),
	}

	ux, design := SplitBySource(items)
	for _, theta := range opts.Thetas {
		r, err := RecallAtK(ux, design, opts.K, theta)
		if err != nil {
			return nil, err
		}
		ev.Semantic = append(ev.Semantic, r)
	}

	configs := []Ablation{
		{Name: "full", Symbolic: true, Similarity: true},
		{Name: "symbolic_only", Symbolic: true},
		{Name: "similarity_only", Similarity: true},
	}
	for _, a := range configs {
		b := builder.New(
			builder.WithThreshold(opts.Threshold),
			builder.WithSymbolicEdges(a.Symbolic),
			builder.WithSimilarityEdges(a.Similarity),
			builder.WithWorkers(opts.Workers),
		)
		g, err := b.BuildItems(items)
		if err != nil {
			return nil, fmt.Errorf("ablation %s: %w", a.Name, err)
		}
		a.Stats = g.Stats()
		a.CrossSource = CrossSourceEdges(g, "")
		ev.Ablations = append(ev.Ablations, a)
	}
	return ev, nil
}
