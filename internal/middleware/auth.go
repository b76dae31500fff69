package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"memorybook/internal/security"
)

// OwnerIDKey is the gin context key holding the authenticated owner id.
const OwnerIDKey = "owner_id"

// OwnerRegistry records owners on first sight.
type OwnerRegistry interface {
	Ensure(ctx context.Context, ownerID string) error
}

func Auth(secret string, owners OwnerRegistry, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		ownerID := claims.OwnerID()
		if err := owners.Ensure(c.Request.Context(), ownerID); err != nil {
			log.Error().Err(err).Str("owner_id", ownerID).Msg("register owner failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		c.Set(OwnerIDKey, ownerID)

		c.Next()
	}
}

// OwnerID returns the owner set by Auth.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerIDKey)
}
