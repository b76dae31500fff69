package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/service"
)

type photoResponse struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ingestFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type uploadResponse struct {
	Photos []photoResponse `json:"photos"`
	Failed []ingestFailure `json:"failed"`
}

func newPhotoResponse(v service.PhotoView) photoResponse {
	return photoResponse{
		ID:          v.Photo.ID,
		URL:         v.URL,
		Filename:    v.Photo.Filename,
		ContentType: v.Photo.ContentType,
		SizeBytes:   v.Photo.SizeBytes,
		TakenAt:     v.Photo.TakenAt,
		CreatedAt:   v.Photo.CreatedAt,
	}
}

func (h HandlerSet) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload_too_large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "photos_required"})
		return
	}

	result, err := h.svc.Photos.Ingest(c.Request.Context(), middleware.OwnerID(c), form.File["photos"])
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := uploadResponse{
		Photos: make([]photoResponse, 0, len(result.Photos)),
		Failed: make([]ingestFailure, 0, len(result.Failed)),
	}
	for _, v := range result.Photos {
		resp.Photos = append(resp.Photos, newPhotoResponse(v))
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, ingestFailure{Filename: f.Filename, Reason: f.Reason})
	}

	status := http.StatusCreated
	if len(resp.Photos) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

func (h HandlerSet) ListPhotos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	views, err := h.svc.Photos.List(c.Request.Context(), middleware.OwnerID(c), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]photoResponse, 0, len(views))
	for _, v := range views {
		items = append(items, newPhotoResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"photos": items})
}

func (h HandlerSet) GetPhotoURL(c *gin.Context) {
	thumb := c.Query("thumb") == "1"
	url, err := h.svc.Photos.URL(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), thumb)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h HandlerSet) DeletePhoto(c *gin.Context) {
	if err := h.svc.Photos.Delete(c.Request.Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
