package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/constants"
	apierrors "github.com/taskforge/taskforge/internal/errors"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

// RequireAuth validates the bearer token and stores the principal in the
// request context. A missing or invalid token is always 401, never treated
// as anonymous.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		principal, err := authService.ParseToken(tokenStr)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	}
}

// RequireRole gates a route to a single role. Runs after RequireAuth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if principal.Role != role {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from context.
func GetPrincipal(c *gin.Context) (authz.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return authz.Principal{}, false
	}
	principal, ok := value.(authz.Principal)
	return principal, ok
}
