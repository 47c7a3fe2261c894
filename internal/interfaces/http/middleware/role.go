package middleware

import (
	"net/http"

	"github.com/aurum/jewelstore/internal/domain/identity"
	"github.com/aurum/jewelstore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireRole admits authenticated users whose role satisfies required.
// It must run after the JWT middleware.
func RequireRole(required identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTClaims(c) == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		role := identity.Role(GetJWTRole(c))
		if !role.IsValid() || !role.Allows(required) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient role for this operation")
			return
		}
		c.Next()
	}
}
