package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/internal/platform/auth"
)

// -- Mock User Repository --

type mockUserRepo struct {
	users  map[int64]*User
	nextID int64
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

const testSecret = "identity-test-secret"

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, auth.NewIssuer(testSecret, auth.DefaultTokenTTL)), repo
}

func seedDoctor(t *testing.T, svc *Service) *User {
	t.Helper()
	u, err := svc.RegisterDoctor(context.Background(), NewUserRequest{
		Nombre: "Ana", Apellidos: "Pérez", Email: "dr@x.com", Password: "secret",
	})
	if err != nil {
		t.Fatalf("RegisterDoctor: %v", err)
	}
	return u
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService()
	u := seedDoctor(t, svc)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "dr@x.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.User.ID != u.ID || resp.User.Role != auth.RoleMedico || resp.User.Email != "dr@x.com" {
		t.Errorf("unexpected user view %+v", resp.User)
	}

	p, err := auth.NewIssuer(testSecret, auth.DefaultTokenTTL).Parse(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.ID != u.ID || p.Role != auth.RoleMedico {
		t.Errorf("principal = %+v", p)
	}
	if d := time.Until(resp.ExpiresAt); d < 7*time.Hour+59*time.Minute || d > 8*time.Hour {
		t.Errorf("expires in %s, want about 8h", d)
	}
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()
	seedDoctor(t, svc)

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "  DR@X.com ", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIdentical(t *testing.T) {
	svc, _ := newTestService()
	seedDoctor(t, svc)

	_, errUnknown := svc.Login(context.Background(), LoginRequest{Email: "nobody@x.com", Password: "secret"})
	_, errWrong := svc.Login(context.Background(), LoginRequest{Email: "dr@x.com", Password: "wrong"})

	for _, err := range []error{errUnknown, errWrong} {
		if !apperr.Is(err, apperr.KindInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}
	if apperr.PublicMessage(errUnknown) != apperr.PublicMessage(errWrong) {
		t.Errorf("messages differ: %q vs %q", apperr.PublicMessage(errUnknown), apperr.PublicMessage(errWrong))
	}
	if apperr.KindOf(errUnknown).Status() != 401 {
		t.Error("expected 401")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Login(context.Background(), LoginRequest{Email: "dr@x.com"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLogin_RepositoryFailureIsInternal(t *testing.T) {
	svc, repo := newTestService()
	repo.err = errors.New("connection reset")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "dr@x.com", Password: "secret"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestRegisterDoctor_HashesAndAssignsMedico(t *testing.T) {
	svc, repo := newTestService()
	u := seedDoctor(t, svc)

	stored := repo.users[u.ID]
	if stored.Role != auth.RoleMedico {
		t.Errorf("role = %s, want MEDICO", stored.Role)
	}
	if stored.PasswordHash == "secret" || !auth.CheckPassword(stored.PasswordHash, "secret") {
		t.Error("password not stored as bcrypt hash")
	}
}

func TestRegisterDoctor_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	seedDoctor(t, svc)

	_, err := svc.RegisterDoctor(context.Background(), NewUserRequest{
		Nombre: "Otro", Apellidos: "Médico", Email: "DR@x.com", Password: "x",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestRegisterDoctor_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  NewUserRequest
	}{
		{"missing nombre", NewUserRequest{Apellidos: "A", Email: "a@x.com", Password: "p"}},
		{"missing apellidos", NewUserRequest{Nombre: "A", Email: "a@x.com", Password: "p"}},
		{"missing email", NewUserRequest{Nombre: "A", Apellidos: "B", Password: "p"}},
		{"missing password", NewUserRequest{Nombre: "A", Apellidos: "B", Email: "a@x.com"}},
		{"bad email", NewUserRequest{Nombre: "A", Apellidos: "B", Email: "ax.com", Password: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			if _, err := svc.RegisterDoctor(context.Background(), tt.req); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateAdmin(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.CreateAdmin(context.Background(), NewUserRequest{
		Nombre: "Root", Apellidos: "Admin", Email: "admin@x.com", Password: "changeme",
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if u.Role != auth.RoleAdmin {
		t.Errorf("role = %s, want ADMIN", u.Role)
	}
	n, err := svc.AdminCount(context.Background())
	if err != nil || n != 1 {
		t.Errorf("AdminCount() = %d, %v", n, err)
	}
}

func TestMe(t *testing.T) {
	svc, repo := newTestService()
	u := seedDoctor(t, svc)
	ctx := auth.WithPrincipal(context.Background(), &auth.Principal{ID: u.ID, Role: auth.RoleMedico})

	v, err := svc.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if v.ID != u.ID || v.Nombre != "Ana" {
		t.Errorf("Me = %+v", v)
	}

	if _, err := svc.Me(context.Background()); !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Errorf("no principal: expected unauthenticated, got %v", err)
	}

	repo.err = errors.New("connection reset")
	if _, err := svc.Me(ctx); !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("storage error: expected internal, got %v", err)
	}
}
