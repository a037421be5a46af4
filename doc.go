// Package hskg builds Hybrid Semantic Knowledge Graphs that link user
// experience feedback to design reference material.
//
// A graph has one node per item and two edge layers: symbolic edges join
// items that share a category (one clique per category) and similarity edges
// join items whose embeddings have cosine similarity at or above a threshold.
// Parallel edges of different kinds are kept.
//
// # Basic Usage
//
// Create a client from a storage backend and an embedder:
//
//	store, err := storage.New(ctx, storage.Config{Type: storage.SQLiteStorage, DSN: "./hskg.db"}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	emb := embedder.NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), embedder.Config{})
//	client, err := hskg.NewClient(store, emb, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// # Building a graph
//
// Items without embeddings are embedded before the build:
//
//	items := []types.HeterogeneousItem{
//		{Text: "the button is hard to click", Modality: types.TextModality, Source: types.UXSource, Category: "item"},
//		{Text: "make primary actions large", Modality: types.TextModality, Source: types.DesignSource, Category: "item"},
//	}
//
//	result, err := client.Build(ctx, items, &hskg.BuildOptions{Name: "checkout", Save: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.GraphID, result.Stats.SymbolicEdges, result.Stats.SimilarityEdges)
//
// # Storage
//
// Graphs are persisted through a storage.Backend (memory, sqlite, postgres,
// badger or neo4j). Saving always creates a new copy with a fresh id.
// Embedding vectors are not persisted; only a presence flag is kept.
package hskg
