package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Components  map[string]string `json:"components"`
	Environment string            `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		components[name] = "ok"
		if err := check(ctx); err != nil {
			components[name] = "error"
			status = "degraded"
			h.log.Error().Err(err).Str("component", name).Msg("health check failed")
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      status,
		Components:  components,
		Environment: h.cfg.Environment,
	})
}
