package server_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/config"
	"memorybook/internal/handlers"
	"memorybook/internal/security"
	"memorybook/internal/server"
	"memorybook/internal/service"
	"memorybook/internal/service/servicetest"
)

const secret = "test-secret-key-for-jwt-signing-must-be-long-enough"

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func uploadRequest(t *testing.T, token string, files ...[]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, data := range files {
		part, err := mw.CreateFormFile("photos", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/photos", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadBodyIsBounded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		Environment: "test",
		Security:    config.SecurityConfig{JWTSecret: secret},
		Ingest:      config.IngestConfig{MaxPhotos: 2, MaxFileBytes: 1 << 10},
	}
	db := servicetest.NewDB()
	log := zerolog.Nop()
	svc := handlers.Services{
		Photos: service.NewPhotoService(db.Photos(), servicetest.NewObjects(), cfg.Ingest, time.Minute, log),
		Owners: db.Settings(),
	}
	srv := server.NewHTTPServer(cfg, log, handlers.NewHandlerSet(log, cfg, svc, nil))

	token, err := security.GenerateAccessToken(secret, "owner-1", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, uploadRequest(t, token, jpegBytes))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	huge := append(append([]byte{}, jpegBytes...), bytes.Repeat([]byte{1}, 2<<20)...)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, uploadRequest(t, token, huge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "payload_too_large")
}
