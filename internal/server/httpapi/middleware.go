package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clubtourney-server/internal/server/auth"
	"clubtourney-server/internal/server/models"
)

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "role"
)

// AccessTokenGuard verifies the Bearer access token and stashes the caller's
// identity in the gin context. Access tokens are stateless; no database
// lookup happens here.
func AccessTokenGuard(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := tokens.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ctxUserIDKey, claims.Subject)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

// roleFromContext returns the verified role of the caller, defaulting to the
// least-privileged one when absent.
func roleFromContext(c *gin.Context) models.Role {
	if v, ok := c.Get(ctxRoleKey); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RolePlayer
}
