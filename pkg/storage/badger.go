package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/hskg/pkg/graph"
)

func init() {
	Register(BadgerStorage, func(_ context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
		return NewBadgerBackend(cfg.Path, logger)
	})
}

// Key layout:
//
//	graph/<graph_id>               GraphInfo
//	node/<graph_id>/<node_id>      badgerNode
//	rel/<graph_id>/<relation_id>   badgerRelation
const (
	graphPrefix    = "graph/"
	nodePrefix     = "node/"
	relationPrefix = "rel/"
)

type badgerNode struct {
	Position int `json:"position"`
	graph.NodeRecord
}

type badgerRelation struct {
	Position int `json:"position"`
	graph.RelationRecord
}

// BadgerBackend stores graphs as JSON documents in an embedded badger database.
type BadgerBackend struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerBackend opens a badger database in dir. An empty dir keeps
// everything in memory.
func NewBadgerBackend(dir string, logger *slog.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerBackend{db: db, logger: orDefault(logger)}, nil
}

func graphKey(id string) []byte             { return []byte(graphPrefix + id) }
func nodeKey(graphID, id string) []byte     { return []byte(nodePrefix + graphID + "/" + id) }
func relationKey(graphID, id string) []byte { return []byte(relationPrefix + graphID + "/" + id) }

func (b *BadgerBackend) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	info, doc, err := snapshot(g, name)
	if err != nil {
		return "", err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, graphKey(info.ID), info); err != nil {
			return err
		}
		for i, rec := range doc.Nodes {
			if err := setJSON(txn, nodeKey(info.ID, rec.ID), badgerNode{Position: i, NodeRecord: rec}); err != nil {
				return fmt.Errorf("node %s: %w", rec.ID, err)
			}
		}
		for i, rec := range doc.Relations {
			if err := setJSON(txn, relationKey(info.ID, rec.ID), badgerRelation{Position: i, RelationRecord: rec}); err != nil {
				return fmt.Errorf("relation %s: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save graph: %w", err)
	}

	b.logger.Debug("Saved graph", "backend", BadgerStorage, "graph_id", info.ID, "nodes", info.Metadata.NodeCount)
	return info.ID, nil
}

func (b *BadgerBackend) LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		info      GraphInfo
		nodes     []badgerNode
		relations []badgerRelation
	)
	err := b.db.View(func(txn *badger.Txn) error {
		if err := getJSON(txn, graphKey(id), &info); err != nil {
			return err
		}
		if err := scanPrefix(txn, []byte(nodePrefix+id+"/"), func(v []byte) error {
			var n badgerNode
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			nodes = append(nodes, n)
			return nil
		}); err != nil {
			return err
		}
		return scanPrefix(txn, []byte(relationPrefix+id+"/"), func(v []byte) error {
			var r badgerRelation
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			relations = append(relations, r)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", id, err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Position < nodes[j].Position })
	sort.Slice(relations, func(i, j int) bool { return relations[i].Position < relations[j].Position })

	nodeRecords := make([]graph.NodeRecord, len(nodes))
	for i, n := range nodes {
		nodeRecords[i] = n.NodeRecord
	}
	relRecords := make([]graph.RelationRecord, len(relations))
	for i, r := range relations {
		relRecords[i] = r.RelationRecord
	}
	return assemble(b.logger, id, info.Name, nodeRecords, relRecords)
}

func (b *BadgerBackend) DeleteGraph(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	deleted := false
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(graphKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		keys := [][]byte{graphKey(id)}
		for _, prefix := range []string{nodePrefix + id + "/", relationPrefix + id + "/"} {
			keys = append(keys, prefixKeys(txn, []byte(prefix))...)
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete graph %s: %w", id, err)
	}
	return deleted, nil
}

func (b *BadgerBackend) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos := []GraphInfo{}
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(graphPrefix), func(v []byte) error {
			var info GraphInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return err
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	sortInfos(infos)
	return infos, nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func prefixKeys(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}
