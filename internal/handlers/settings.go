package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memorybook/internal/middleware"
	"memorybook/internal/models"
)

type settingsRequest struct {
	ChildName     string `json:"childName"`
	ChildBirthday string `json:"childBirthday"`
}

type settingsResponse struct {
	ChildName     string    `json:"childName"`
	ChildBirthday string    `json:"childBirthday"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newSettingsResponse(s models.OwnerSettings) settingsResponse {
	resp := settingsResponse{ChildName: s.ChildName, UpdatedAt: s.UpdatedAt}
	if s.ChildBirthday != nil {
		resp.ChildBirthday = s.ChildBirthday.Format("2006-01-02")
	}
	return resp
}

func (h HandlerSet) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings.Get(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsResponse(settings))
}

func (h HandlerSet) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	settings, err := h.svc.Settings.Update(c.Request.Context(), middleware.OwnerID(c), req.ChildName, req.ChildBirthday)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsResponse(settings))
}
