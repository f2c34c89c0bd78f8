package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geriatria/historia-clinica/internal/platform/db"
)

// tables maps catalog names to trusted table identifiers.
var tables = map[Name]string{
	Sexo:         "sexo",
	EstadoCivil:  "estado_civil",
	InformadoPor: "informado_por",
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func tableFor(catalog Name) (string, error) {
	t, ok := tables[catalog]
	if !ok {
		return "", fmt.Errorf("unknown catalog %q", catalog)
	}
	return t, nil
}

func (r *repoPG) Lookup(ctx context.Context, catalog Name, value string) (int32, error) {
	table, err := tableFor(catalog)
	if err != nil {
		return 0, err
	}
	var id int32
	err = r.conn(ctx).QueryRow(ctx, `SELECT id FROM `+table+` WHERE nombre = $1`, value).Scan(&id)
	if db.IsNoRows(err) {
		return 0, ErrValueNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", table, err)
	}
	return id, nil
}

func (r *repoPG) List(ctx context.Context, catalog Name) ([]Entry, error) {
	table, err := tableFor(catalog)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, nombre FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Nombre); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
