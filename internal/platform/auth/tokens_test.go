package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer(testSecret, 0)
	if iss.TTL() != DefaultTokenTTL {
		t.Fatalf("TTL() = %s, want %s", iss.TTL(), DefaultTokenTTL)
	}

	tok, exp, err := iss.Issue(42, RoleMedico)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(exp); d < 7*time.Hour || d > 8*time.Hour+time.Minute {
		t.Errorf("expiry %s not about 8h away", exp)
	}

	p, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.ID != 42 || p.Role != RoleMedico {
		t.Errorf("principal = %+v", p)
	}
}

func TestIssuer_ExpiredAfterTTL(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	iss := NewIssuer(testSecret, 8*time.Hour).WithClock(fixedClock(issuedAt))

	tok, _, err := iss.Issue(7, RoleMedico)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := iss.WithClock(fixedClock(issuedAt.Add(8*time.Hour - time.Second))).Parse(tok); err != nil {
		t.Errorf("token rejected before expiry: %v", err)
	}
	_, err = iss.WithClock(fixedClock(issuedAt.Add(8*time.Hour + time.Second))).Parse(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	tok, _, _ := NewIssuer("other-secret", time.Hour).Issue(1, RoleAdmin)
	if _, err := NewIssuer(testSecret, time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_RejectsMalformed(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestIssuer_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleAdmin,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer(testSecret, time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected none-signed token to be rejected, got %v", err)
	}
}

func TestIssuer_RejectsMissingExpiry(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}, Role: RoleAdmin}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if _, err := NewIssuer(testSecret, time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected token without exp to be rejected, got %v", err)
	}
}

func TestIssuer_RejectsBadSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleMedico,
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if _, err := NewIssuer(testSecret, time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
