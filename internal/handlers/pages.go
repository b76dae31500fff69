package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/models"
)

type pageResponse struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Theme         string      `json:"theme"`
	BackgroundURL string      `json:"backgroundUrl,omitempty"`
	DateRange     string      `json:"dateRange,omitempty"`
	AgeString     string      `json:"ageString,omitempty"`
	Photos        []photoLink `json:"photos"`
	Status        string      `json:"status"`
}

func newPageResponse(p models.Page) pageResponse {
	return pageResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Theme:         string(p.Theme),
		BackgroundURL: p.BackgroundURL,
		DateRange:     p.DateRange,
		AgeString:     p.AgeString,
		Photos:        photoLinks(p.Photos),
		Status:        string(p.Status),
	}
}

func (h HandlerSet) ListPages(c *gin.Context) {
	pages, err := h.svc.Drafts.ListPages(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]pageResponse, 0, len(pages))
	for _, p := range pages {
		items = append(items, newPageResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"pages": items})
}
