package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moduleforge/moduleforge/internal/server/auth"
)

// userIDKey is the gin context key holding the authenticated user id.
const userIDKey = "moduleforge_user_id"

// authMiddleware extracts the bearer token from the Authorization header,
// verifies it and stores the user id in the gin context. Requests without a
// valid token are rejected with 401 before any handler runs.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid credential"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid credential"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID returns the authenticated user id stored by authMiddleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
