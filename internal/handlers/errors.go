package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/service"
)

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// logged and hidden from the client.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	default:
		h.log.Error().
			Err(err).
			Str("owner_id", middleware.OwnerID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
}
