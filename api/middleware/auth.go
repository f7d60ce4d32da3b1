package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserAuthMiddleware берёт uid, который проставил шлюз identity-провайдера.
// Поддерживает два варианта:
// 1. X-User-ID заголовок
// 2. Authorization: Bearer uid_<uid> (для интеграционных тестов)
func UserAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := userIDFromRequest(c); userID != "" {
			c.Set("user_id", userID)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required: provide X-User-ID header or Authorization Bearer token"})
		c.Abort()
	}
}

func userIDFromRequest(c *gin.Context) string {
	if userID := strings.TrimSpace(c.GetHeader("X-User-ID")); userID != "" {
		return userID
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if strings.HasPrefix(token, "uid_") {
			return strings.TrimSpace(strings.TrimPrefix(token, "uid_"))
		}
	}
	return ""
}
