package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorybook/internal/middleware"
	"memorybook/internal/security"
)

const secret = "test-secret-key-for-jwt-signing-must-be-long-enough"

type owners struct {
	seen []string
	err  error
}

func (o *owners) Ensure(_ context.Context, ownerID string) error {
	o.seen = append(o.seen, ownerID)
	return o.err
}

func newRouter(reg *owners) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Auth(secret, reg, zerolog.Nop()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": middleware.OwnerID(c)})
	})
	return router
}

func TestAuth_NoToken(t *testing.T) {
	reg := &owners{}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	newRouter(reg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_token")
	assert.Empty(t, reg.seen)
}

func TestAuth_InvalidToken(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	newRouter(&owners{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")
}

func TestAuth_ValidToken(t *testing.T) {
	reg := &owners{}
	token, err := security.GenerateAccessToken(secret, "owner-123", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newRouter(reg).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owner":"owner-123"}`, w.Body.String())
	assert.Equal(t, []string{"owner-123"}, reg.seen)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestAuth_RegistryFailure(t *testing.T) {
	token, err := security.GenerateAccessToken(secret, "owner-123", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newRouter(&owners{err: errors.New("db down")}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORS([]string{"https://book.example"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://book.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://book.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(zerolog.Nop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_server_error")
	assert.Contains(t, w.Body.String(), w.Header().Get("X-Request-Id"))
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.RequestIDFrom(c))
	})

	cases := map[string]bool{
		"frontend-7f3a.1":       true,
		"":                      false,
		"has space":             false,
		strings.Repeat("a", 65): false,
	}
	for inbound, kept := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		if inbound != "" {
			req.Header.Set("X-Request-Id", inbound)
		}
		router.ServeHTTP(w, req)

		got := w.Header().Get("X-Request-Id")
		assert.Equal(t, got, w.Body.String())
		if kept {
			assert.Equal(t, inbound, got)
		} else {
			assert.NotEqual(t, inbound, got)
			assert.Len(t, got, 36)
		}
	}
}

func TestMaxBodyBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.MaxBodyBytes(8))
	router.POST("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/test", strings.NewReader("small"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "small", w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/test", strings.NewReader("far too large"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "payload_too_large")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/test", io.NopCloser(strings.NewReader("far too large")))
	req.ContentLength = -1
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
