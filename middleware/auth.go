package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soratane/guildcore/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	PlayerUUIDKey = "player_uuid"
	PlayerNameKey = "player_name"

	// AdminKeyHeader carries the shared admin key for operator endpoints.
	AdminKeyHeader = "X-Admin-Key"
)

// Auth validates the Bearer JWT and stores the player identity in the Gin
// context.
func Auth(sec config.SecurityConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		ctx.Set(PlayerUUIDKey, claims.PlayerUUID)
		ctx.Set(PlayerNameKey, claims.PlayerName)
		ctx.Next()
	}
}

// AdminKey gates operator endpoints behind a shared key compared against a
// bcrypt hash. An empty configured hash disables the endpoints entirely.
func AdminKey(sec config.SecurityConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if sec.AdminKeyHash == "" {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin endpoints disabled"})
			return
		}
		key := ctx.GetHeader(AdminKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword([]byte(sec.AdminKeyHash), []byte(key)) != nil {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		ctx.Next()
	}
}

// GetPlayerUUID retrieves the authenticated player's UUID from the Gin
// context, or uuid.Nil.
func GetPlayerUUID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(PlayerUUIDKey); exists {
		return v.(uuid.UUID)
	}
	return uuid.Nil
}

// GetPlayerName retrieves the authenticated player's name from the Gin
// context.
func GetPlayerName(c *gin.Context) string {
	if v, exists := c.Get(PlayerNameKey); exists {
		return v.(string)
	}
	return ""
}
