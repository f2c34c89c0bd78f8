package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geriatria/historia-clinica/internal/platform/db"
	"github.com/geriatria/historia-clinica/pkg/pagination"
)

const dateLayout = "2006-01-02"

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

// EnsureByRecord inserts the record number if it is new and otherwise reads
// the existing row. DO NOTHING leaves an existing row untouched and unlocked;
// when a concurrent transaction inserted the same number first, the INSERT
// waits for it and the follow-up SELECT sees its row.
func (r *repoPG) EnsureByRecord(ctx context.Context, numeroRecord string) (int64, error) {
	conn := r.conn(ctx)

	var id int64
	err := conn.QueryRow(ctx, `
		INSERT INTO expediente (numero_record) VALUES ($1)
		ON CONFLICT (numero_record) DO NOTHING
		RETURNING id`, numeroRecord).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !db.IsNoRows(err) {
		return 0, fmt.Errorf("insert expediente: %w", err)
	}

	err = conn.QueryRow(ctx, `SELECT id FROM expediente WHERE numero_record = $1`, numeroRecord).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select expediente: %w", err)
	}
	return id, nil
}

// patientSelect describes each expediente by its latest snapshot. The
// lateral join drops expedientes that have none.
const patientSelect = `
	SELECT e.id, e.numero_record, l.nombre, l.apellidos, l.telefono, l.fecha, c.total
	FROM expediente e
	JOIN LATERAL (
		SELECT p.nombre, p.apellidos, p.telefono, p.fecha
		FROM paciente p
		WHERE p.expediente_id = e.id
		ORDER BY p.fecha DESC, p.id DESC
		LIMIT 1
	) l ON true
	JOIN LATERAL (
		SELECT COUNT(*) AS total FROM paciente p WHERE p.expediente_id = e.id
	) c ON true`

func (r *repoPG) List(ctx context.Context, page pagination.Params) ([]*Patient, int, error) {
	conn := r.conn(ctx)

	var total int
	if err := conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM expediente e
		WHERE EXISTS (SELECT 1 FROM paciente p WHERE p.expediente_id = e.id)`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expediente: %w", err)
	}

	rows, err := conn.Query(ctx, patientSelect+`
		ORDER BY l.fecha DESC, e.id DESC
		`+page.SQL())
	if err != nil {
		return nil, 0, fmt.Errorf("list expediente: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, patientSelect+` WHERE e.id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrPatientNotFound
	}
	return p, err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var ultima time.Time
	if err := row.Scan(&p.ID, &p.NumeroRecord, &p.Nombre, &p.Apellidos, &p.Telefono, &ultima, &p.TotalHistorias); err != nil {
		if db.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	p.UltimaVisita = ultima.Format(dateLayout)
	return &p, nil
}
