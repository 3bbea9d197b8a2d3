package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/metameet/server/internal/auth"
)

// AuthRequired validates the Authorization bearer token and stores the
// caller's userId on the request context.
func AuthRequired(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
			return
		}
		userID, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set("userId", string(userID))
		c.Next()
	}
}
