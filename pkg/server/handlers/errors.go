package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/hskg"
	"github.com/soundprediction/hskg/pkg/server/dto"
	"github.com/soundprediction/hskg/pkg/types"
)

func writeError(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, dto.ErrorResponse{Error: errCode, Message: message, Code: status})
}

// writeServiceError maps client errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, types.ErrShapeMismatch),
		errors.Is(err, types.ErrEmbeddingDimension),
		errors.Is(err, types.ErrDanglingEndpoint),
		errors.Is(err, types.ErrEmptyText),
		errors.Is(err, types.ErrInvalidModality),
		errors.Is(err, types.ErrInvalidSource),
		errors.Is(err, types.ErrRawDataOnText):
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, hskg.ErrNoEmbedder):
		writeError(c, http.StatusServiceUnavailable, "embedder_unavailable", err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
