package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/auth"
)

const claimsKey = "auth_claims"

// authMiddleware verifies the bearer token and stores its claims on the
// request context
func authMiddleware(tokens *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requirePermission rejects requests whose role does not grant the
// permission. Must run after authMiddleware.
func requirePermission(perm auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		if !auth.HasPermission(entity.Role(claims.Role), perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// claimsFrom returns the verified claims set by authMiddleware, or nil
func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
