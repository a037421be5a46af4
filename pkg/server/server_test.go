package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/config"
	"github.com/soundprediction/hskg/pkg/embedder"
	"github.com/soundprediction/hskg/pkg/server/dto"
	"github.com/soundprediction/hskg/pkg/storage"
	"github.com/soundprediction/hskg/pkg/telemetry"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
			Mode: gin.TestMode,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	client, err := hskg.NewClient(storage.NewMemoryBackend(nil), embedder.NewHashingEmbedder(32), nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	s := New(testConfig(), client, nil)
	s.Setup()
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSetup(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.Setup()

	require.NotNil(t, s.router)
	require.NotNil(t, s.server)
	assert.Equal(t, "localhost:8080", s.server.Addr)
	assert.Equal(t, s.router, s.Handler())
}

func TestHealthEndpoints(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.Setup()

	tests := []struct {
		path string
		want int
	}{
		{path: "/health", want: http.StatusOK},
		{path: "/live", want: http.StatusOK},
		{path: "/health/detailed", want: http.StatusOK},
		// no client, so storage cannot be probed
		{path: "/ready", want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, s, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	ready := do(t, newTestServer(t), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.Setup()

	w := do(t, s, http.MethodOptions, "/api/v1/graphs", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func buildRequest() dto.BuildGraphRequest {
	return dto.BuildGraphRequest{
		Name: "checkout",
		Items: []types.HeterogeneousItem{
			{Text: "checkout button hidden", Modality: types.TextModality, Source: types.UXSource, Category: "item", Embedding: []float32{1, 0, 0}},
			{Text: "dark mode missing", Modality: types.TextModality, Source: types.UXSource, Category: "setting", Embedding: []float32{0, 1, 0}},
			{Text: "make primary buttons prominent", Modality: types.TextModality, Source: types.DesignSource, Category: "item", Embedding: []float32{0.9, 0.1, 0}},
		},
		Save: true,
	}
}

func TestGraphLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/graphs", buildRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var built dto.BuildGraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &built))
	require.NotEmpty(t, built.GraphID)
	assert.Equal(t, "checkout", built.Name)
	assert.Equal(t, 3, built.Nodes)
	assert.Equal(t, 1, built.SymbolicEdges)
	assert.Equal(t, 1, built.SimilarityEdges)

	w = do(t, s, http.MethodGet, "/api/v1/graphs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.GraphListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, built.GraphID, list.Graphs[0].ID)

	w = do(t, s, http.MethodGet, "/api/v1/graphs/"+built.GraphID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Name  string `json:"name"`
		Nodes []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"nodes"`
		Relations []json.RawMessage `json:"relations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "checkout", doc.Name)
	require.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Relations, 2)

	w = do(t, s, http.MethodGet, "/api/v1/graphs/"+built.GraphID+"/stats?hubs=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		CrossSource int `json:"cross_source_relations"`
		Hubs        []struct {
			Name   string `json:"name"`
			Degree int    `json:"degree"`
		} `json:"hubs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.CrossSource)
	require.Len(t, stats.Hubs, 1)
	assert.Equal(t, 2, stats.Hubs[0].Degree)

	var hubID string
	for _, n := range doc.Nodes {
		if n.Name == "checkout button hidden" {
			hubID = n.ID
		}
	}
	require.NotEmpty(t, hubID)

	w = do(t, s, http.MethodGet, "/api/v1/graphs/"+built.GraphID+"/nodes/"+hubID+"/neighbors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var neighbors dto.NeighborsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neighbors))
	assert.Equal(t, "both", neighbors.Direction)
	require.Equal(t, 2, neighbors.Total)
	for _, n := range neighbors.Neighbors {
		assert.Equal(t, "make primary buttons prominent", n.Node.Name)
	}

	w = do(t, s, http.MethodGet, "/api/v1/graphs/"+built.GraphID+"/nodes/"+hubID+"/neighbors?types=similar_to", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neighbors))
	require.Equal(t, 1, neighbors.Total)
	assert.Equal(t, types.SimilarityEdge, neighbors.Neighbors[0].Kind)
	require.NotNil(t, neighbors.Neighbors[0].Weight)

	w = do(t, s, http.MethodDelete, "/api/v1/graphs/"+built.GraphID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodDelete, "/api/v1/graphs/"+built.GraphID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodGet, "/api/v1/graphs/"+built.GraphID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildWithoutSave(t *testing.T) {
	s := newTestServer(t)
	req := buildRequest()
	req.Save = false
	for i := range req.Items {
		req.Items[i].Embedding = nil
	}

	w := do(t, s, http.MethodPost, "/api/v1/graphs", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var built dto.BuildGraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &built))
	assert.Empty(t, built.GraphID)
	assert.Equal(t, 3, built.Nodes)
}

func TestBuildRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)
	off := false
	badThreshold := 1.5

	tests := []struct {
		name   string
		mutate func(r *dto.BuildGraphRequest)
	}{
		{name: "no items", mutate: func(r *dto.BuildGraphRequest) { r.Items = nil }},
		{name: "bad source", mutate: func(r *dto.BuildGraphRequest) { r.Items[0].Source = "marketing" }},
		{name: "empty text", mutate: func(r *dto.BuildGraphRequest) { r.Items[0].Text = "" }},
		{name: "threshold out of range", mutate: func(r *dto.BuildGraphRequest) { r.Threshold = &badThreshold }},
		{name: "no layers", mutate: func(r *dto.BuildGraphRequest) { r.SymbolicEdges, r.SimilarityEdges = &off, &off }},
		{name: "ragged embeddings", mutate: func(r *dto.BuildGraphRequest) { r.Items[2].Embedding = []float32{1, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := buildRequest()
			tt.mutate(&req)
			w := do(t, s, http.MethodPost, "/api/v1/graphs", req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestNeighborsErrors(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/v1/graphs", buildRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var built dto.BuildGraphResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &built))

	base := "/api/v1/graphs/" + built.GraphID
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, base+"/nodes/missing/neighbors", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/v1/graphs/missing/nodes/x/neighbors", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, base+"/nodes/x/neighbors?direction=sideways", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, base+"/nodes/x/neighbors?types=KNOWS", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, base+"/stats?hubs=-1", nil).Code)
}

func TestEmbedEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/embed", dto.EmbedRequest{Texts: []string{"hello world", "dark mode"}})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.EmbedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Embeddings, 2)
	assert.Equal(t, 32, resp.Dimensions)

	w = do(t, s, http.MethodPost, "/api/v1/embed", dto.EmbedRequest{Texts: []string{"ok", ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/embed", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmbedWithoutEmbedder(t *testing.T) {
	client, err := hskg.NewClient(storage.NewMemoryBackend(nil), nil, nil, nil)
	require.NoError(t, err)
	s := New(testConfig(), client, nil)
	s.Setup()

	w := do(t, s, http.MethodPost, "/api/v1/embed", dto.EmbedRequest{Texts: []string{"hello"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestContextMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(contextMiddleware())

	var user, session, source any
	r.GET("/", func(c *gin.Context) {
		ctx := c.Request.Context()
		user = ctx.Value(telemetry.ContextKeyUserID)
		session = ctx.Value(telemetry.ContextKeySessionID)
		source = ctx.Value(telemetry.ContextKeyRequestSource)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "u-1")
	req.Header.Set("X-Session-ID", "s-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u-1", user)
	assert.Equal(t, "s-1", session)
	assert.Equal(t, "http", source)
}
