package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
)

// TokenIssuer signs session tokens; *auth.Issuer satisfies it.
type TokenIssuer interface {
	Issue(userID int64, role string) (string, time.Time, error)
}

// invalidCredentials is shared by the unknown-email and wrong-password paths
// so the two are indistinguishable to the caller.
var invalidCredentials = apperr.New(apperr.KindInvalidCredentials, "Invalid credentials.")

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var (
	dummyHashOnce sync.Once
	dummyHash     string
)

func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("historia-clinica-timing")
	})
	auth.CheckPassword(dummyHash, password)
}

type Service struct {
	users  UserRepository
	tokens TokenIssuer
}

func NewService(users UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("Email and password are required.")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		equalizeTiming(req.Password)
		return nil, invalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, invalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{Token: token, ExpiresAt: exp, User: u.View()}, nil
}

// Me returns the public profile of the authenticated user. A token whose
// user no longer exists yields not found.
func (s *Service) Me(ctx context.Context) (*UserView, error) {
	id := auth.UserIDFromContext(ctx)
	if id == 0 {
		return nil, apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided.")
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	v := u.View()
	return &v, nil
}

// RegisterDoctor provisions a MEDICO account.
func (s *Service) RegisterDoctor(ctx context.Context, req NewUserRequest) (*User, error) {
	return s.create(ctx, req, auth.RoleMedico)
}

// CreateAdmin provisions an ADMIN account. Used to bootstrap a deployment.
func (s *Service) CreateAdmin(ctx context.Context, req NewUserRequest) (*User, error) {
	return s.create(ctx, req, auth.RoleAdmin)
}

// AdminCount returns the number of ADMIN accounts.
func (s *Service) AdminCount(ctx context.Context) (int, error) {
	n, err := s.users.CountByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func (s *Service) create(ctx context.Context, req NewUserRequest, role string) (*User, error) {
	u := &User{
		Nombre:    strings.TrimSpace(req.Nombre),
		Apellidos: strings.TrimSpace(req.Apellidos),
		Email:     NormalizeEmail(req.Email),
		Role:      role,
	}
	if u.Nombre == "" || u.Apellidos == "" || u.Email == "" || req.Password == "" {
		return nil, apperr.Validation("nombre, apellidos, email and password are required.")
	}
	if !strings.Contains(u.Email, "@") {
		return nil, apperr.Validation("email %q is not valid", u.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u.PasswordHash = hash

	err = s.users.Create(ctx, u)
	if errors.Is(err, ErrEmailTaken) {
		return nil, apperr.Wrap(apperr.KindConflict, "Email already exists.", err)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}
