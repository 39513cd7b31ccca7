package middleware

import (
	"net/http"
	"strings"

	"tictactoe_server/internal/http/handlers"
	"tictactoe_server/internal/service"

	"github.com/gin-gonic/gin"
)

type TokenParser interface {
	Parse(token string) (*service.Claims, error)
}

// JWTAuth requires "Authorization: Bearer <token>": 401 when missing,
// 403 when the token does not verify.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}

		c.Set(handlers.ContextUserID, claims.UserID)
		c.Set(handlers.ContextUsername, claims.Username)
		c.Next()
	}
}
