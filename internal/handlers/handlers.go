package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"memorybook/internal/config"
	"memorybook/internal/middleware"
	"memorybook/internal/service"
)

// Services groups the application services the HTTP layer drives.
type Services struct {
	Photos    *service.PhotoService
	Clusters  *service.ClusterService
	Drafts    *service.DraftService
	Approvals *service.ApprovalService
	Settings  *service.SettingsService
	Owners    middleware.OwnerRegistry
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	svc    Services
	checks map[string]HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, checks map[string]HealthCheck) HandlerSet {
	return HandlerSet{
		log:    log,
		cfg:    cfg,
		svc:    svc,
		checks: checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(h.cfg.Security.JWTSecret, h.svc.Owners, h.log))
	{
		v1.POST("/photos", h.UploadPhotos)
		v1.GET("/photos", h.ListPhotos)
		v1.GET("/photos/:id/url", h.GetPhotoURL)
		v1.DELETE("/photos/:id", h.DeletePhoto)

		v1.POST("/clusters/analyze", h.AnalyzeClusters)

		v1.GET("/drafts", h.ListDrafts)
		v1.GET("/drafts/:id", h.GetDraft)
		v1.PATCH("/drafts/:id", h.EditDraft)
		v1.PUT("/drafts/:id/photos", h.CurateDraft)
		v1.POST("/drafts/:id/approve", h.ApproveDraft)
		v1.DELETE("/drafts/:id", h.DiscardDraft)

		v1.GET("/pages", h.ListPages)

		v1.GET("/settings", h.GetSettings)
		v1.PUT("/settings", h.UpdateSettings)
	}
}
