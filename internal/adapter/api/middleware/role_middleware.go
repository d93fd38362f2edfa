package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAnyRole gates a route group to callers holding at least one of
// the given roles. Role claims are verified by Authenticate; this only
// reads them.
func RequireAnyRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := Identity(c)
			if identity.UID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			for _, role := range roles {
				if identity.HasRole(role) {
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient privileges")
		}
	}
}
