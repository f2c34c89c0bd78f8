package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// RequireRole admits callers whose role is in roles. No role implies
// another: an ADMIN cannot reach MEDICO routes unless listed.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[RoleFromContext(c.Request().Context())] {
				return apperr.New(apperr.KindForbidden, "You do not have permission to perform this action.")
			}
			return next(c)
		}
	}
}
