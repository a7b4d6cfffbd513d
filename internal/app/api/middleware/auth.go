package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eduforge/coursepay/internal/app/service/account"
	"github.com/eduforge/coursepay/pkg/response"
	"github.com/eduforge/coursepay/pkg/types"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

// Auth validates the bearer token and stores the caller's id and role on the
// gin context. The user_id key is the one the request logger enriches traces
// with.
func Auth(tokens *account.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid token"))
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...types.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := types.UserRole(c.GetString(ContextRoleKey))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			response.ErrorT[any](response.APIResponseCodeForbidden, "insufficient role"))
	}
}

// UserID returns the authenticated caller's id set by Auth.
func UserID(c *gin.Context) string { return c.GetString(ContextUserIDKey) }
