package middleware

import (
	"net/http"
	"strings"

	"collab-service/internal/auth"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

type AuthMiddleware struct {
	tokens *auth.TokenService
}

func NewAuthMiddleware(tokens *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth validates the Authorization bearer token and puts the user id
// into the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		userID, err := m.tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
