package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mbti-bot/internal/service"
)

// AdminAuthMiddleware valida el bearer token de administrador.
func AdminAuthMiddleware(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if admin == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "admin auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		if err := admin.ParseToken(token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
