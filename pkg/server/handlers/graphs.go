package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/report"
	"github.com/soundprediction/hskg/pkg/server/dto"
	"github.com/soundprediction/hskg/pkg/types"
)

const defaultTopHubs = 10

// GraphHandler serves graph building and stored graph lookups.
type GraphHandler struct {
	client hskg.HSKG
	cache  *graphCache
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(client hskg.HSKG) *GraphHandler {
	h := &GraphHandler{client: client}
	h.cache = newGraphCache(defaultCachedGraphs, func(ctx context.Context, id string) (*graph.KnowledgeGraph, error) {
		return h.client.LoadGraph(ctx, id)
	})
	return h
}

// BuildGraph handles POST /api/v1/graphs
func (h *GraphHandler) BuildGraph(c *gin.Context) {
	var req dto.BuildGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.client.Build(c.Request.Context(), req.Items, &hskg.BuildOptions{
		Name:            req.Name,
		Threshold:       req.Threshold,
		SymbolicEdges:   req.SymbolicEdges,
		SimilarityEdges: req.SimilarityEdges,
		Save:            req.Save,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.GraphID != "" {
		status = http.StatusCreated
	}
	c.JSON(status, dto.BuildGraphResponse{
		GraphID:         result.GraphID,
		Name:            result.KnowledgeGraph.Name(),
		Nodes:           result.Stats.NodeCount,
		Edges:           result.Stats.RelationCount,
		SymbolicEdges:   result.Stats.SymbolicEdges,
		SimilarityEdges: result.Stats.SimilarityEdges,
		Density:         result.Stats.Density,
		Graph:           result.KnowledgeGraph.ToDocument(),
	})
}

// ListGraphs handles GET /api/v1/graphs
func (h *GraphHandler) ListGraphs(c *gin.Context) {
	graphs, err := h.client.ListGraphs(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GraphListResponse{Graphs: graphs, Total: len(graphs)})
}

// GetGraph handles GET /api/v1/graphs/:id
func (h *GraphHandler) GetGraph(c *gin.Context) {
	g, err := h.cache.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, g.ToDocument())
}

// DeleteGraph handles DELETE /api/v1/graphs/:id
func (h *GraphHandler) DeleteGraph(c *gin.Context) {
	id := c.Param("id")
	h.cache.evict(id)
	deleted, err := h.client.DeleteGraph(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "not_found", "graph "+id+" not found")
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: gin.H{"graph_id": id}})
}

// GraphStats handles GET /api/v1/graphs/:id/stats. The hubs query
// parameter sets how many best-connected nodes are listed.
func (h *GraphHandler) GraphStats(c *gin.Context) {
	topHubs := defaultTopHubs
	if v := c.Query("hubs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid_request", "hubs must be a non-negative integer")
			return
		}
		topHubs = n
	}

	g, err := h.cache.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	var rep report.GraphReport
	_ = g.View(func(kg *graph.KnowledgeGraph) error {
		rep = report.Summarize(kg, topHubs)
		return nil
	})
	c.JSON(http.StatusOK, rep)
}

// GetNeighbors handles GET /api/v1/graphs/:id/nodes/:node_id/neighbors.
// Query parameters: direction (outgoing, incoming, both) and types, a comma
// separated list of relation types.
func (h *GraphHandler) GetNeighbors(c *gin.Context) {
	dirName := c.DefaultQuery("direction", "both")
	dir, err := graph.ParseDirection(dirName)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var relTypes []types.RelationType
	if raw := c.Query("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, err := types.ParseRelationType(part)
			if err != nil {
				writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
			relTypes = append(relTypes, t)
		}
	}

	g, err := h.cache.get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	nodeID := c.Param("node_id")
	if _, ok := g.GetNode(nodeID); !ok {
		writeError(c, http.StatusNotFound, "not_found", "node "+nodeID+" not found")
		return
	}

	neighbors := g.GetNeighbors(nodeID, dir, relTypes...)
	results := make([]dto.NeighborResult, 0, len(neighbors))
	for _, n := range neighbors {
		res := dto.NeighborResult{
			RelationID: n.Relation.ID,
			Type:       n.Relation.Type,
			Kind:       n.Relation.Kind(),
			SourceID:   n.Relation.SourceID,
			TargetID:   n.Relation.TargetID,
			Node:       n.Target,
		}
		if n.Target.ID == nodeID {
			res.Node = n.Source
		}
		if w, ok := n.Relation.Weight(); ok {
			res.Weight = &w
		}
		if l, ok := n.Relation.Label(); ok {
			res.Label = l
		}
		results = append(results, res)
	}

	c.JSON(http.StatusOK, dto.NeighborsResponse{
		NodeID:    nodeID,
		Direction: dir.String(),
		Neighbors: results,
		Total:     len(results),
	})
}
