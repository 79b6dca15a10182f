package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"profileimport/internal/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Middleware authenticates callers of the import API by their service key,
// passed as a Bearer token or an X-API-Key header.
func Middleware(dbService db.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
		if token == "" {
			token = c.GetHeader("X-API-Key")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is required"})
			return
		}

		key, err := dbService.FindServiceKeyByKey(token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if key.Status != "active" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "API key is not active"})
			return
		}

		if !key.ExpiresAt.IsZero() && key.ExpiresAt.Before(time.Now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "API key has expired"})
			return
		}

		// Usage tracking is best-effort; a failed increment never blocks the
		// request.
		_ = dbService.IncrementServiceKeyUsage(token)

		c.Next()
	}
}

// AdminAuthMiddleware protects the admin endpoints with basic auth.
func AdminAuthMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth || user != "admin" || password != adminPassword {
			c.Header("WWW-Authenticate", `Basic realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
