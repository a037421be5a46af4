package storage

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// dialect holds what differs between the relational engines.
type dialect struct {
	name   StorageType
	driver string

	// rebind rewrites ?-style placeholders for the engine.
	rebind func(query string) string

	schema func(cfg Config) []string

	// labels converts a label list to a query argument, and labelsDest
	// returns a scan destination plus a function that yields the labels.
	labels     func(labels []string) (any, error)
	labelsDest func() (any, func() ([]string, error))

	timestamp func(t time.Time) any
}

var postgresDialect = dialect{
	name:   PostgresStorage,
	driver: "postgres",
	rebind: dollarPlaceholders,
	schema: postgresSchema,
	labels: func(labels []string) (any, error) {
		return pq.Array(labels), nil
	},
	labelsDest: func() (any, func() ([]string, error)) {
		var labels pq.StringArray
		return &labels, func() ([]string, error) { return []string(labels), nil }
	},
	timestamp: func(t time.Time) any { return t.UTC() },
}

var sqliteDialect = dialect{
	name:   SQLiteStorage,
	driver: "sqlite",
	rebind: func(q string) string { return q },
	schema: sqliteSchema,
	labels: func(labels []string) (any, error) {
		data, err := json.Marshal(labels)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	},
	labelsDest: func() (any, func() ([]string, error)) {
		var raw []byte
		return &raw, func() ([]string, error) {
			var labels []string
			if len(raw) == 0 {
				return labels, nil
			}
			if err := json.Unmarshal(raw, &labels); err != nil {
				return nil, fmt.Errorf("failed to decode labels: %w", err)
			}
			return labels, nil
		}
	},
	timestamp: func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

// sqliteTimeLayout is fixed width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dollarPlaceholders turns "a = ? AND b = ?" into "a = $1 AND b = $2".
func dollarPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func postgresSchema(cfg Config) []string {
	embedding := "JSONB"
	var stmts []string
	if cfg.UseVector {
		dims := cfg.EmbeddingDimensions
		if dims <= 0 {
			dims = 1536
		}
		stmts = append(stmts, "CREATE EXTENSION IF NOT EXISTS vector")
		embedding = fmt.Sprintf("vector(%d)", dims)
	}
	return append(stmts,
		`CREATE TABLE IF NOT EXISTS graphs (
			id VARCHAR(64) PRIMARY KEY,
			name TEXT NOT NULL,
			node_count INT NOT NULL DEFAULT 0,
			relation_count INT NOT NULL DEFAULT 0,
			edge_kinds JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS nodes (
			graph_id VARCHAR(64) NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			id VARCHAR(255) NOT NULL,
			position INT NOT NULL,
			type VARCHAR(50) NOT NULL,
			name TEXT NOT NULL,
			properties JSONB,
			labels TEXT[],
			has_embedding BOOLEAN NOT NULL DEFAULT FALSE,
			embedding %s,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (graph_id, id)
		)`, embedding),
		`CREATE TABLE IF NOT EXISTS relations (
			graph_id VARCHAR(64) NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			id VARCHAR(255) NOT NULL,
			position INT NOT NULL,
			source_id VARCHAR(255) NOT NULL,
			target_id VARCHAR(255) NOT NULL,
			type VARCHAR(50) NOT NULL,
			properties JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (graph_id, id),
			FOREIGN KEY (graph_id, source_id) REFERENCES nodes(graph_id, id) ON DELETE CASCADE,
			FOREIGN KEY (graph_id, target_id) REFERENCES nodes(graph_id, id) ON DELETE CASCADE
		)`,
		"CREATE INDEX IF NOT EXISTS idx_nodes_graph_type ON nodes(graph_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_relations_graph_source ON relations(graph_id, source_id)",
		"CREATE INDEX IF NOT EXISTS idx_relations_graph_target ON relations(graph_id, target_id)",
	)
}

func sqliteSchema(Config) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS graphs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			node_count INTEGER NOT NULL DEFAULT 0,
			relation_count INTEGER NOT NULL DEFAULT 0,
			edge_kinds TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			properties TEXT,
			labels TEXT,
			has_embedding INTEGER NOT NULL DEFAULT 0,
			embedding BLOB,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (graph_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS relations (
			graph_id TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			type TEXT NOT NULL,
			properties TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (graph_id, id),
			FOREIGN KEY (graph_id, source_id) REFERENCES nodes(graph_id, id) ON DELETE CASCADE,
			FOREIGN KEY (graph_id, target_id) REFERENCES nodes(graph_id, id) ON DELETE CASCADE
		)`,
		"CREATE INDEX IF NOT EXISTS idx_nodes_graph_type ON nodes(graph_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_relations_graph_source ON relations(graph_id, source_id)",
		"CREATE INDEX IF NOT EXISTS idx_relations_graph_target ON relations(graph_id, target_id)",
	}
}

// sqlTime scans timestamps stored either natively or as RFC 3339 text.
type sqlTime struct{ t time.Time }

func (s *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.t = time.Time{}
	case time.Time:
		s.t = v.UTC()
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case int64:
		s.t = time.Unix(0, v).UTC()
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}

func (s *sqlTime) parse(v string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", v)
}

var _ sql.Scanner = (*sqlTime)(nil)

// jsonArg encodes v for a JSON/JSONB column.
func jsonArg(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
