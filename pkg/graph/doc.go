// Package graph holds the in-memory knowledge graph model.
//
// A KnowledgeGraph stores nodes and relations by id, indexes nodes by
// lower-cased name and by type, and keeps a directed multigraph view keyed by
// (source, target, relation id). Relations may only be added between nodes
// already in the graph.
//
// Graphs serialise to a Document of the form {name, nodes, relations}, where
// each node records whether it has an embedding but not the vector itself:
//
//	g := graph.New("feedback")
//	n, _ := g.AddNode(types.NewNode(types.ConceptNodeType, "slow checkout", nil))
//	doc := g.ToDocument()
//	restored, err := graph.FromDocument(doc)
package graph
