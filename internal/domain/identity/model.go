package identity

import (
	"strings"
	"time"
)

// User is a staff account. Users are created by an admin and never deleted.
type User struct {
	ID           int64     `json:"id"`
	Nombre       string    `json:"nombre"`
	Apellidos    string    `json:"apellidos"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is the public projection returned by login and /users/me.
type UserView struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Nombre: u.Nombre, Apellidos: u.Apellidos, Email: u.Email, Role: u.Role}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

// NewUserRequest carries the fields needed to provision an account.
type NewUserRequest struct {
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// NormalizeEmail trims and lowercases so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
