package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

func runJWT(t *testing.T, iss *Issuer, path, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)

	called := false
	err := JWTMiddleware(iss)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	_, called, err := runJWT(t, NewIssuer(testSecret, time.Hour), "/api/patients", "")
	if called {
		t.Error("handler should not run")
	}
	if !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if apperr.KindOf(err).Status() != http.StatusUnauthorized {
		t.Error("expected 401")
	}
}

func TestJWTMiddleware_InvalidFormat(t *testing.T) {
	tests := []struct {
		name   string
		header string
		kind   apperr.Kind
	}{
		{"no bearer prefix", "Token abc123", apperr.KindUnauthenticated},
		{"lowercase bearer", "bearer abc123", apperr.KindUnauthenticated},
		{"missing token", "Bearer", apperr.KindUnauthenticated},
		{"basic auth", "Basic dXNlcjpwYXNz", apperr.KindUnauthenticated},
		{"empty token", "Bearer ", apperr.KindInvalidToken},
		{"garbage token", "Bearer not.a.jwt", apperr.KindInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, called, err := runJWT(t, NewIssuer(testSecret, time.Hour), "/api/patients", tt.header)
			if called {
				t.Error("handler should not run")
			}
			if got := apperr.KindOf(err); got != tt.kind {
				t.Errorf("kind = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestJWTMiddleware_ExpiredTokenIs400(t *testing.T) {
	issued := time.Now().Add(-8*time.Hour - time.Second)
	tok, _, err := NewIssuer(testSecret, 8*time.Hour).WithClock(fixedClock(issued)).Issue(3, RoleMedico)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, called, err := runJWT(t, NewIssuer(testSecret, 8*time.Hour), "/api/patients", "Bearer "+tok)
	if called {
		t.Error("handler should not run")
	}
	if apperr.KindOf(err).Status() != http.StatusBadRequest {
		t.Errorf("expected 400 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_ValidTokenAttachesPrincipal(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	tok, _, _ := iss.Issue(11, RoleMedico)

	c, called, err := runJWT(t, iss, "/api/patients", "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called")
	}
	ctx := c.Request().Context()
	if UserIDFromContext(ctx) != 11 || RoleFromContext(ctx) != RoleMedico {
		t.Errorf("principal = %+v", PrincipalFromContext(ctx))
	}
}

func TestJWTMiddleware_PublicPathSkipsAuth(t *testing.T) {
	_, called, err := runJWT(t, NewIssuer(testSecret, time.Hour), "/api/auth/login", "")
	if err != nil || !called {
		t.Errorf("expected public path to pass, err=%v called=%v", err, called)
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	if PrincipalFromContext(ctx) != nil || UserIDFromContext(ctx) != 0 || RoleFromContext(ctx) != "" {
		t.Error("expected zero values without a principal")
	}
}
