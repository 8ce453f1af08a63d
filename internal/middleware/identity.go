package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"markethub/internal/auth"
)

// Context keys populated by Identity for downstream handlers.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Identity lifts the typed claims produced by the token parser into plain
// context keys for downstream handlers. It must run after the JWT middleware
// on secured groups.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, string(claims.Role))
			return next(c)
		}
	}
}

// UserID returns the authenticated user id stored by Identity.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserID).(uint)
	return id, ok
}
