// Package builder constructs hybrid semantic knowledge graphs.
//
// Given n texts, an n×d embedding matrix and optional categories, a Builder
// produces nodes 0..n-1 and two layers of undirected edges:
//
//   - similarity: every pair i<j whose cosine similarity is at least the threshold (default 0.7)
//   - symbolic: every pair sharing a non-empty category, labelled with it
//
// The layers are merged into one multigraph, so a pair may be joined by both a
// similarity and a symbolic edge. Output is deterministic for a given input.
//
//	b := builder.New(builder.WithThreshold(0.75))
//	g, err := b.Build(sentences, vectors, categories)
//	kg, err := g.ToKnowledgeGraph("feedback")
package builder
