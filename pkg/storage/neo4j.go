package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/types"
)

func init() {
	Register(Neo4jStorage, func(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
		return NewNeo4jBackend(ctx, cfg, logger)
	})
}

// Neo4jBackend stores each graph as a (:HSKGGraph) node that CONTAINS its
// (:HSKGNode) nodes, with relations as [:HSKG_REL] relationships between them.
type Neo4jBackend struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jBackend connects to cfg.URI and ensures the id constraints exist.
func NewNeo4jBackend(ctx context.Context, cfg Config, logger *slog.Logger) (*Neo4jBackend, error) {
	if cfg.URI == "" {
		return nil, errors.New("neo4j uri is required")
	}
	client, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		client.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	n := &Neo4jBackend{client: client, database: database, logger: orDefault(logger)}
	if err := n.createConstraints(ctx); err != nil {
		client.Close(ctx)
		return nil, err
	}
	return n, nil
}

func (n *Neo4jBackend) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database, AccessMode: mode})
}

func (n *Neo4jBackend) createConstraints(ctx context.Context) error {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, query := range []string{
		"CREATE CONSTRAINT hskg_graph_id IF NOT EXISTS FOR (g:HSKGGraph) REQUIRE g.id IS UNIQUE",
		"CREATE INDEX hskg_node_key IF NOT EXISTS FOR (n:HSKGNode) ON (n.graph_id, n.id)",
	} {
		res, err := session.Run(ctx, query, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to create neo4j schema: %w", err)
		}
	}
	return nil
}

func (n *Neo4jBackend) SaveGraph(ctx context.Context, g *graph.KnowledgeGraph, name string) (string, error) {
	info, doc, err := snapshot(g, name)
	if err != nil {
		return "", err
	}

	edgeKinds, err := json.Marshal(info.Metadata.EdgeKinds)
	if err != nil {
		return "", err
	}
	nodes := make([]any, len(doc.Nodes))
	for i, rec := range doc.Nodes {
		props, err := json.Marshal(rec.Properties)
		if err != nil {
			return "", fmt.Errorf("failed to encode node %s: %w", rec.ID, err)
		}
		nodes[i] = map[string]any{
			"id":            rec.ID,
			"position":      i,
			"type":          rec.Type,
			"name":          rec.Name,
			"properties":    string(props),
			"labels":        rec.Labels,
			"has_embedding": rec.HasEmbedding,
			"created_at":    formatTime(rec.CreatedAt),
			"updated_at":    formatTime(rec.UpdatedAt),
		}
	}
	relations := make([]any, len(doc.Relations))
	for i, rec := range doc.Relations {
		props, err := json.Marshal(rec.Properties)
		if err != nil {
			return "", fmt.Errorf("failed to encode relation %s: %w", rec.ID, err)
		}
		relations[i] = map[string]any{
			"id":         rec.ID,
			"position":   i,
			"source_id":  rec.SourceID,
			"target_id":  rec.TargetID,
			"type":       rec.Type,
			"properties": string(props),
			"created_at": formatTime(rec.CreatedAt),
			"updated_at": formatTime(rec.UpdatedAt),
		}
	}

	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			CREATE (g:HSKGGraph {
				id: $id, name: $name,
				node_count: $node_count, relation_count: $relation_count,
				edge_kinds: $edge_kinds,
				created_at: $created_at, updated_at: $updated_at
			})`, map[string]any{
			"id":             info.ID,
			"name":           info.Name,
			"node_count":     info.Metadata.NodeCount,
			"relation_count": info.Metadata.RelationCount,
			"edge_kinds":     string(edgeKinds),
			"created_at":     formatTime(info.CreatedAt),
			"updated_at":     formatTime(info.UpdatedAt),
		}); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			MATCH (g:HSKGGraph {id: $graph_id})
			UNWIND $nodes AS node
			CREATE (g)-[:CONTAINS]->(n:HSKGNode)
			SET n = node, n.graph_id = $graph_id`, map[string]any{
			"graph_id": info.ID,
			"nodes":    nodes,
		}); err != nil {
			return nil, err
		}

		_, err := tx.Run(ctx, `
			UNWIND $relations AS rel
			MATCH (s:HSKGNode {graph_id: $graph_id, id: rel.source_id})
			MATCH (t:HSKGNode {graph_id: $graph_id, id: rel.target_id})
			CREATE (s)-[r:HSKG_REL]->(t)
			SET r = rel`, map[string]any{
			"graph_id":  info.ID,
			"relations": relations,
		})
		return nil, err
	})
	if err != nil {
		return "", fmt.Errorf("failed to save graph: %w", err)
	}

	n.logger.Debug("Saved graph", "backend", Neo4jStorage, "graph_id", info.ID, "nodes", info.Metadata.NodeCount)
	return info.ID, nil
}

type neo4jGraph struct {
	name      string
	nodes     []graph.NodeRecord
	relations []graph.RelationRecord
}

func (n *Neo4jBackend) LoadGraph(ctx context.Context, id string) (*graph.KnowledgeGraph, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (g:HSKGGraph {id: $id}) RETURN g.name AS name", map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, notFound(id)
		}
		out := &neo4jGraph{name: asString(records[0].AsMap()["name"])}

		res, err = tx.Run(ctx, `
			MATCH (:HSKGGraph {id: $id})-[:CONTAINS]->(n:HSKGNode)
			RETURN n {.*} AS node
			ORDER BY n.position`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			props, _ := record.AsMap()["node"].(map[string]any)
			rec, err := nodeRecordFromNeo4j(props)
			if err != nil {
				return nil, err
			}
			out.nodes = append(out.nodes, rec)
		}

		res, err = tx.Run(ctx, `
			MATCH (s:HSKGNode {graph_id: $id})-[r:HSKG_REL]->(t:HSKGNode {graph_id: $id})
			RETURN r {.*} AS rel, s.id AS source_id, t.id AS target_id
			ORDER BY r.position`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			m := record.AsMap()
			props, _ := m["rel"].(map[string]any)
			rec, err := relationRecordFromNeo4j(props, asString(m["source_id"]), asString(m["target_id"]))
			if err != nil {
				return nil, err
			}
			out.relations = append(out.relations, rec)
		}
		return out, nil
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load graph %s: %w", id, err)
	}

	stored := result.(*neo4jGraph)
	return assemble(n.logger, id, stored.name, stored.nodes, stored.relations)
}

func (n *Neo4jBackend) DeleteGraph(ctx context.Context, id string) (bool, error) {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (g:HSKGGraph {id: $id})
			OPTIONAL MATCH (g)-[:CONTAINS]->(n:HSKGNode)
			WITH g, collect(n) AS nodes
			FOREACH (x IN nodes | DETACH DELETE x)
			DETACH DELETE g
			RETURN $id AS deleted`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete graph %s: %w", id, err)
	}
	return result.(bool), nil
}

func (n *Neo4jBackend) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (g:HSKGGraph) RETURN g {.*} AS graph", nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		infos := make([]GraphInfo, 0, len(records))
		for _, record := range records {
			props, _ := record.AsMap()["graph"].(map[string]any)
			info := GraphInfo{
				ID:        asString(props["id"]),
				Name:      asString(props["name"]),
				CreatedAt: parseTime(props["created_at"]),
				UpdatedAt: parseTime(props["updated_at"]),
				Metadata: Metadata{
					NodeCount:     asInt(props["node_count"]),
					RelationCount: asInt(props["relation_count"]),
				},
			}
			if raw := asString(props["edge_kinds"]); raw != "" {
				if err := json.Unmarshal([]byte(raw), &info.Metadata.EdgeKinds); err != nil {
					return nil, fmt.Errorf("graph %s: failed to decode edge kinds: %w", info.ID, err)
				}
			}
			infos = append(infos, info)
		}
		return infos, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	infos := result.([]GraphInfo)
	sortInfos(infos)
	return infos, nil
}

func (n *Neo4jBackend) Close() error {
	return n.client.Close(context.Background())
}

func nodeRecordFromNeo4j(props map[string]any) (graph.NodeRecord, error) {
	rec := graph.NodeRecord{
		ID:           asString(props["id"]),
		Type:         asString(props["type"]),
		Name:         asString(props["name"]),
		Labels:       asStrings(props["labels"]),
		HasEmbedding: asBool(props["has_embedding"]),
		CreatedAt:    parseTime(props["created_at"]),
		UpdatedAt:    parseTime(props["updated_at"]),
	}
	if err := decodeProperties([]byte(asString(props["properties"])), &rec.Properties); err != nil {
		return rec, fmt.Errorf("node %s: %w", rec.ID, err)
	}
	return rec, nil
}

func relationRecordFromNeo4j(props map[string]any, sourceID, targetID string) (graph.RelationRecord, error) {
	rec := graph.RelationRecord{
		ID:        asString(props["id"]),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      asString(props["type"]),
		CreatedAt: parseTime(props["created_at"]),
		UpdatedAt: parseTime(props["updated_at"]),
	}
	if err := decodeProperties([]byte(asString(props["properties"])), &rec.Properties); err != nil {
		return rec, fmt.Errorf("relation %s: %w", rec.ID, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
