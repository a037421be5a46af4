package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET(path, handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	w := serve(NewHealthHandler(nil).HealthCheck, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "hskg", response["service"])
	assert.Contains(t, response, "timestamp")
	assert.Equal(t, Version, response["version"])
}

func TestLivenessCheck(t *testing.T) {
	w := serve(NewHealthHandler(nil).LivenessCheck, "/live")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "alive", response["status"])
}

func TestReadinessCheckWithoutClient(t *testing.T) {
	w := serve(NewHealthHandler(nil).ReadinessCheck, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response struct {
		Status string                       `json:"status"`
		Checks map[string]map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_ready", response.Status)
	assert.Equal(t, "unhealthy", response.Checks["storage"]["status"])
	assert.Equal(t, "healthy", response.Checks["system"]["status"])
}

func TestDetailedHealthCheck(t *testing.T) {
	w := serve(NewHealthHandler(nil).DetailedHealthCheck, "/health/detailed")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		System SystemMetrics `json:"system"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Greater(t, response.System.Goroutines, 0)
	assert.NotEmpty(t, response.System.MemoryUsage)
}
