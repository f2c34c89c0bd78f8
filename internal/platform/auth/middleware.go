package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

type contextKey string

const principalKey contextKey = "principal"

// JWTMiddleware authenticates every non-public request. A missing or
// non-Bearer Authorization header is 401; a token that fails verification
// is 400. On success the principal is attached to the request context.
func JWTMiddleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if AuthSkipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided.")
			}

			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			p, err := issuer.Parse(tokenStr)
			if err != nil {
				return apperr.New(apperr.KindInvalidToken, "Invalid token.")
			}

			c.Set("user_id", p.ID)
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// UserIDFromContext returns the caller's id, or 0 when unauthenticated.
func UserIDFromContext(ctx context.Context) int64 {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.ID
	}
	return 0
}

// RoleFromContext returns the caller's role, or "" when unauthenticated.
func RoleFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Role
	}
	return ""
}
