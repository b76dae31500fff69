package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/service"
)

type analyzeRequest struct {
	PhotoIDs []string `json:"photoIds"`
}

type clusterResponse struct {
	ID          string    `json:"id"`
	DraftID     string    `json:"draftId"`
	PhotoIDs    []string  `json:"photoIds"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Theme       string    `json:"theme"`
	CreatedAt   time.Time `json:"createdAt"`
}

type analyzeResponse struct {
	Clusters []clusterResponse `json:"clusters"`
	Drafts   []draftResponse   `json:"drafts"`
}

func (h HandlerSet) AnalyzeClusters(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	results, err := h.svc.Clusters.Analyze(ctx, middleware.OwnerID(c), req.PhotoIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := analyzeResponse{
		Clusters: make([]clusterResponse, 0, len(results)),
		Drafts:   make([]draftResponse, 0, len(results)),
	}
	for _, r := range results {
		resp.Clusters = append(resp.Clusters, clusterResponse{
			ID:          r.Cluster.ID,
			DraftID:     r.Draft.ID,
			PhotoIDs:    r.Cluster.PhotoIDs,
			Title:       r.Cluster.Title,
			Description: r.Cluster.Description,
			Theme:       string(r.Cluster.Theme),
			CreatedAt:   r.Cluster.CreatedAt,
		})

		// The batch is committed; a failed lookup only drops the links.
		view, err := h.svc.Drafts.Get(ctx, r.Draft.OwnerID, r.Draft.ID)
		if err != nil {
			h.log.Warn().Err(err).Str("draft_id", r.Draft.ID).Msg("link analyzed draft failed")
			view = service.DraftView{Draft: r.Draft}
		}
		resp.Drafts = append(resp.Drafts, newDraftResponse(view))
	}

	c.JSON(http.StatusCreated, resp)
}
