package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/models"
	"memorybook/internal/service"
)

type photoLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type draftResponse struct {
	ID            string      `json:"id"`
	ClusterID     string      `json:"clusterId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Theme         string      `json:"theme"`
	AccentColor   string      `json:"accentColor"`
	Status        string      `json:"status"`
	BackgroundURL string      `json:"backgroundUrl,omitempty"`
	DateRange     string      `json:"dateRange,omitempty"`
	AgeString     string      `json:"ageString,omitempty"`
	Photos        []photoLink `json:"photos"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// draftFieldsRequest is a partial update; absent fields stay unchanged.
type draftFieldsRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Theme       *string `json:"theme"`
}

func (r draftFieldsRequest) fields() models.DraftFields {
	return models.DraftFields{Title: r.Title, Description: r.Description, Theme: r.Theme}
}

type curateRequest struct {
	PhotoIDs []string `json:"photoIds"`
}

type approveRequest struct {
	draftFieldsRequest
	KeptPhotoIDs []string `json:"keptPhotoIds"`
}

func photoLinks(photos []models.PagePhoto) []photoLink {
	links := make([]photoLink, 0, len(photos))
	for _, p := range photos {
		links = append(links, photoLink{ID: p.ID, URL: p.URL})
	}
	return links
}

func newDraftResponse(v service.DraftView) draftResponse {
	theme := models.NormalizeTheme(string(v.Draft.Theme))
	return draftResponse{
		ID:            v.Draft.ID,
		ClusterID:     v.Draft.ClusterID,
		Title:         v.Draft.Title,
		Description:   v.Draft.Description,
		Theme:         string(theme),
		AccentColor:   theme.Accent(),
		Status:        string(v.Draft.Status),
		BackgroundURL: v.BackgroundURL,
		DateRange:     v.Draft.DateRange,
		AgeString:     v.Draft.AgeString,
		Photos:        photoLinks(v.Photos),
		CreatedAt:     v.Draft.CreatedAt,
		UpdatedAt:     v.Draft.UpdatedAt,
	}
}

func (h HandlerSet) ListDrafts(c *gin.Context) {
	views, err := h.svc.Drafts.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]draftResponse, 0, len(views))
	for _, v := range views {
		items = append(items, newDraftResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"drafts": items})
}

func (h HandlerSet) GetDraft(c *gin.Context) {
	view, err := h.svc.Drafts.Get(c.Request.Context(), middleware.OwnerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(view))
}

func (h HandlerSet) EditDraft(c *gin.Context) {
	var req draftFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.svc.Drafts.Edit(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), req.fields())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(view))
}

func (h HandlerSet) CurateDraft(c *gin.Context) {
	var req curateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.svc.Drafts.Curate(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), req.PhotoIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDraftResponse(view))
}

func (h HandlerSet) ApproveDraft(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.svc.Approvals.Approve(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), service.ApprovalInput{
		Fields:       req.fields(),
		KeptPhotoIDs: req.KeptPhotoIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page))
}

func (h HandlerSet) DiscardDraft(c *gin.Context) {
	if err := h.svc.Drafts.Discard(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
