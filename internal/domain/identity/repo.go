package identity

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository interface {
	// Create inserts u and fills ID and CreatedAt. A duplicate email
	// yields ErrEmailTaken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	CountByRole(ctx context.Context, role string) (int, error)
}
