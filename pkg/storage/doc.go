/*
Package storage persists knowledge graphs behind one Backend interface.

Backends register themselves under a StorageType tag and are opened with New:

	backend, err := storage.New(ctx, storage.Config{Type: storage.SQLiteStorage, DSN: "hskg.db"}, logger)
	id, err := backend.SaveGraph(ctx, kg, "")
	kg, err = backend.LoadGraph(ctx, id)

Available backends:

  - memory: process-local maps, the default
  - postgres, sqlite: relational tables graphs, nodes and relations
  - badger: an embedded key-value store, in memory when no path is set
  - neo4j: graph nodes and relationships

Every save creates a new copy under a fresh id. Embeddings are not persisted;
nodes record only whether they had one.
*/
package storage
