package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The raw token travels in a custom header, not the Authorization scheme.
const TokenHeader = "x-auth-token"

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user id set by RequireToken. "" if not set.
func UserIDFromContext(c *gin.Context) string {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return ""
	}
	id, ok := v.(string)
	if !ok {
		return ""
	}
	return id
}

// RequireToken returns a middleware that checks for a valid bearer token in the
// x-auth-token header and sets the current user id in context. If missing or
// invalid, responds with 401.
func RequireToken(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}
		userID, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
