package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
)

// RequirePermission rejects requests whose actor lacks every one of the
// given permissions. Route-level guard; usecases re-check for defense in
// depth.
func RequirePermission(perms ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !domain.HasAllPermissions(actor.Roles, perms...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

// RequireAnyPermission rejects requests whose actor holds none of the given
// permissions.
func RequireAnyPermission(perms ...domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !domain.HasAnyPermission(actor.Roles, perms...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}
