package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/openboard/backend/internal/models"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// IdentityKey is the gin context key holding the authenticated Identity.
const IdentityKey = "identity"

// AuthMiddleware requires a valid Bearer token and stores the opaque
// {uid, displayName, email} tuple in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := identityFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
			return
		}
		c.Set(IdentityKey, ident)
		c.Next()
	}
}

// OptionalAuth extracts the identity when a valid token is present but lets
// anonymous requests through. Used on public reads that behave differently
// for signed-in viewers (e.g. the following-only feed scope).
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident, err := identityFromHeader(c.GetHeader("Authorization")); err == nil {
			c.Set(IdentityKey, ident)
		}
		c.Next()
	}
}

// IdentityFrom returns the request identity, zero when anonymous.
func IdentityFrom(c *gin.Context) models.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if ident, ok := v.(models.Identity); ok {
			return ident
		}
	}
	return models.Identity{}
}

func identityFromHeader(header string) (models.Identity, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return models.Identity{}, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, fmt.Errorf("invalid token claims")
	}

	ident := models.Identity{
		UID:         claimString(claims, "uid"),
		DisplayName: claimString(claims, "display_name"),
		Email:       claimString(claims, "email"),
	}
	if ident.IsZero() {
		return models.Identity{}, fmt.Errorf("token carries no uid")
	}
	return ident, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
