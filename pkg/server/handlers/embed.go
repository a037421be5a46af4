package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/server/dto"
)

// EmbedHandler exposes the configured embedder.
type EmbedHandler struct {
	client hskg.HSKG
}

// NewEmbedHandler creates a new embed handler
func NewEmbedHandler(client hskg.HSKG) *EmbedHandler {
	return &EmbedHandler{client: client}
}

// Embed handles POST /api/v1/embed
func (h *EmbedHandler) Embed(c *gin.Context) {
	var req dto.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	vectors, err := h.client.Embed(c.Request.Context(), req.Texts)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := dto.EmbedResponse{Embeddings: vectors}
	if len(vectors) > 0 {
		resp.Dimensions = len(vectors[0])
	}
	c.JSON(http.StatusOK, resp)
}
