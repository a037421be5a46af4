package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("graph x: %w", types.ErrNotFound), want: http.StatusNotFound},
		{name: "shape", err: fmt.Errorf("%w: ragged", types.ErrShapeMismatch), want: http.StatusBadRequest},
		{name: "embedding dimension", err: fmt.Errorf("node a: %w", types.ErrEmbeddingDimension), want: http.StatusBadRequest},
		{name: "dangling endpoint", err: fmt.Errorf("relation r: %w", types.ErrDanglingEndpoint), want: http.StatusBadRequest},
		{name: "invalid source", err: fmt.Errorf("item 1: %w", types.ErrInvalidSource), want: http.StatusBadRequest},
		{name: "no embedder", err: hskg.ErrNoEmbedder, want: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			writeServiceError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
		})
	}
}
