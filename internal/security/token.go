package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are issued by the identity provider in front of this service.
// The owner is the token subject; some issuers carry it in uid instead.
type AccessClaims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// OwnerID returns the id every stored record is scoped by.
func (c AccessClaims) OwnerID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// GenerateAccessToken signs a token for ownerID. The service itself only
// verifies tokens; this is used by tooling and tests.
func GenerateAccessToken(secret string, ownerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   ownerID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseAccessToken(tokenStr string, secret string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		if claims.OwnerID() == "" {
			return nil, fmt.Errorf("token has no subject")
		}
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
