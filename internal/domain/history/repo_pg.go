package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geriatria/historia-clinica/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) CreateSnapshot(ctx context.Context, s *Snapshot) error {
	p := s.Patient
	var edad *int32
	if p.Edad.Valid {
		v := int32(p.Edad.Value)
		edad = &v
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO paciente (
			expediente_id, usuario_id, fecha,
			informado_por_id, informado_por_otro, nombre, apellidos, edad,
			sexo_id, estado_civil_id, direccion, telefono, numero_record, registro_geriatria
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at`,
		s.ExpedienteID, s.DoctorID, s.Fecha,
		s.InformadoPorID, p.InformadoPorOtro, p.Nombre, p.Apellidos, edad,
		s.SexoID, s.EstadoCivilID, p.Direccion, p.Telefono, p.NumeroRecord, p.RegistroGeriatria,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert paciente: %w", err)
	}
	return nil
}

// maxBindParams is the most placeholders Postgres accepts in one statement.
const maxBindParams = 65535

// InsertRows writes rows with as few multi-row INSERTs as the placeholder
// limit allows.
func (r *repoPG) InsertRows(ctx context.Context, sec Section, snapshotID int64, rows []Row) error {
	cols := sec.ColumnNames()
	for _, batch := range splitRows(rows, rowsPerStatement(len(cols))) {
		q, args, err := insertStatement(sec.Table, cols, snapshotID, batch.rows, batch.offset)
		if err != nil {
			return err
		}
		if _, err := r.conn(ctx).Exec(ctx, q, args...); err != nil {
			return fmt.Errorf("insert %s: %w", sec.Table, err)
		}
	}
	return nil
}

// rowsPerStatement counts the snapshot id column too.
func rowsPerStatement(ncols int) int {
	return maxBindParams / (ncols + 1)
}

type rowBatch struct {
	offset int
	rows   []Row
}

func splitRows(rows []Row, per int) []rowBatch {
	var out []rowBatch
	for start := 0; start < len(rows); start += per {
		end := start + per
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rowBatch{offset: start, rows: rows[start:end]})
	}
	return out
}

// insertStatement builds one INSERT for rows; offset only numbers rows in
// errors.
func insertStatement(table string, cols []string, snapshotID int64, rows []Row, offset int) (string, []any, error) {
	width := len(cols) + 1

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (paciente_id, %s) VALUES ", table, strings.Join(cols, ", "))
	args := make([]any, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != len(cols) {
			return "", nil, fmt.Errorf("insert %s: row %d has %d values, want %d", table, offset+i, len(row), len(cols))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := 0; j < width; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", len(args)+j+1)
		}
		sb.WriteByte(')')
		args = append(args, snapshotID)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

const snapshotSelect = `
	SELECT p.id, p.expediente_id, p.usuario_id, p.fecha, p.created_at,
		p.sexo_id, p.estado_civil_id, p.informado_por_id,
		COALESCE(ip.nombre, ''), p.informado_por_otro, p.nombre, p.apellidos, p.edad,
		COALESCE(sx.nombre, ''), COALESCE(ec.nombre, ''),
		p.direccion, p.telefono, p.numero_record, p.registro_geriatria,
		u.nombre, u.apellidos
	FROM paciente p
	JOIN usuario u ON u.id = p.usuario_id
	LEFT JOIN sexo sx ON sx.id = p.sexo_id
	LEFT JOIN estado_civil ec ON ec.id = p.estado_civil_id
	LEFT JOIN informado_por ip ON ip.id = p.informado_por_id`

func (r *repoPG) GetSnapshot(ctx context.Context, id int64) (*Snapshot, error) {
	return scanSnapshot(r.conn(ctx).QueryRow(ctx, snapshotSelect+` WHERE p.id = $1`, id))
}

func (r *repoPG) LatestSnapshotByRecord(ctx context.Context, numeroRecord string) (*Snapshot, error) {
	return scanSnapshot(r.conn(ctx).QueryRow(ctx, snapshotSelect+`
		JOIN expediente e ON e.id = p.expediente_id
		WHERE e.numero_record = $1
		ORDER BY p.fecha DESC, p.id DESC
		LIMIT 1`, numeroRecord))
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	var edad *int32
	p := &s.Patient
	err := row.Scan(
		&s.ID, &s.ExpedienteID, &s.DoctorID, &s.Fecha, &s.CreatedAt,
		&s.SexoID, &s.EstadoCivilID, &s.InformadoPorID,
		&p.InformadoPor, &p.InformadoPorOtro, &p.Nombre, &p.Apellidos, &edad,
		&p.Sexo, &p.EstadoCivil,
		&p.Direccion, &p.Telefono, &p.NumeroRecord, &p.RegistroGeriatria,
		&s.DoctorNombre, &s.DoctorApellidos,
	)
	if db.IsNoRows(err) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan paciente: %w", err)
	}
	if edad != nil {
		p.Edad = IntOf(int(*edad))
	}
	p.Fecha = s.Fecha.Format(dateLayout)
	return &s, nil
}

func (r *repoPG) LoadRows(ctx context.Context, sec Section, snapshotID int64) ([]Row, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE paciente_id = $1 ORDER BY id`,
		strings.Join(sec.ColumnNames(), ", "), sec.Table)
	rows, err := r.conn(ctx).Query(ctx, q, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", sec.Table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		dest := make([]any, len(sec.Columns))
		ints := make([]int32, len(sec.Columns))
		texts := make([]string, len(sec.Columns))
		for i, col := range sec.Columns {
			if col.Int {
				dest[i] = &ints[i]
			} else {
				dest[i] = &texts[i]
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", sec.Table, err)
		}

		row := make(Row, len(sec.Columns))
		for i, col := range sec.Columns {
			if col.Int {
				row[i] = int(ints[i])
			} else {
				row[i] = texts[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repoPG) ListByRecord(ctx context.Context, numeroRecord string) ([]*Summary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.fecha, p.created_at, u.id, u.nombre, u.apellidos
		FROM paciente p
		JOIN expediente e ON e.id = p.expediente_id
		JOIN usuario u ON u.id = p.usuario_id
		WHERE e.numero_record = $1
		ORDER BY p.fecha DESC, p.id DESC`, numeroRecord)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		var s Summary
		var fecha time.Time
		if err := rows.Scan(&s.ID, &fecha, &s.CreatedAt, &s.DoctorID, &s.DoctorNombre, &s.DoctorApellidos); err != nil {
			return nil, fmt.Errorf("scan history summary: %w", err)
		}
		s.Fecha = fecha.Format(dateLayout)
		out = append(out, &s)
	}
	return out, rows.Err()
}
