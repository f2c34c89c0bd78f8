package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geriatria/historia-clinica/internal/platform/db"
)

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, nombre, apellidos, email, password_hash, rol, created_at`

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO usuario (nombre, apellidos, email, password_hash, rol)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		u.Nombre, u.Apellidos, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM usuario WHERE email = $1`, email))
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM usuario WHERE id = $1`, id))
}

func (r *userRepoPG) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM usuario WHERE rol = $1`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("count usuario: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Nombre, &u.Apellidos, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan usuario: %w", err)
	}
	return &u, nil
}
