package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BearerMiddleware rejects requests whose Authorization bearer token fails
// the validator.
func BearerMiddleware(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err := v.Validate(strings.TrimSpace(token)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
