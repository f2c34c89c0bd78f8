package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/domain/catalog"
	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/internal/platform/db"
)

// CatalogResolver maps display values to catalog ids; *catalog.Resolver
// satisfies it.
type CatalogResolver interface {
	Resolve(ctx context.Context, name catalog.Name, value string) (*int32, error)
}

// PatientDirectory owns the patient entity keyed by record number.
type PatientDirectory interface {
	EnsureByRecord(ctx context.Context, numeroRecord string) (int64, error)
}

type Service struct {
	repo      Repository
	tx        db.Transactor
	catalogs  CatalogResolver
	patients  PatientDirectory
	validator Validator
	sections  []Section
	now       func() time.Time
	logger    zerolog.Logger
}

func NewService(repo Repository, tx db.Transactor, catalogs CatalogResolver, patients PatientDirectory, validator Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		tx:        tx,
		catalogs:  catalogs,
		patients:  patients,
		validator: validator,
		sections:  Sections,
		now:       time.Now,
		logger:    logger,
	}
}

// Create validates the document and persists it in one transaction:
// catalogs are resolved, the patient entity is ensured, the snapshot is
// inserted and then every section's rows. Any failure rolls back all of it.
func (s *Service) Create(ctx context.Context, doctorID int64, c *Content) (int64, error) {
	if c == nil {
		return 0, apperr.Validation("content is required")
	}
	if err := s.validator.Prepare(c, s.now()); err != nil {
		return 0, err
	}
	fecha, _ := time.Parse(dateLayout, c.PatientData.Fecha)

	var snap *Snapshot
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p := c.PatientData
		snap = &Snapshot{DoctorID: doctorID, Fecha: fecha, Patient: p}

		var err error
		if snap.SexoID, err = s.catalogs.Resolve(ctx, catalog.Sexo, p.Sexo); err != nil {
			return err
		}
		if snap.EstadoCivilID, err = s.catalogs.Resolve(ctx, catalog.EstadoCivil, p.EstadoCivil); err != nil {
			return err
		}
		if snap.InformadoPorID, err = s.catalogs.Resolve(ctx, catalog.InformadoPor, p.InformadoPor); err != nil {
			return err
		}

		if snap.ExpedienteID, err = s.patients.EnsureByRecord(ctx, p.NumeroRecord); err != nil {
			return fmt.Errorf("ensure expediente: %w", err)
		}
		if err := s.repo.CreateSnapshot(ctx, snap); err != nil {
			return err
		}

		for _, sec := range s.sections {
			rows := sec.Extract(c)
			if len(rows) == 0 {
				continue
			}
			if err := s.repo.InsertRows(ctx, sec, snap.ID, rows); err != nil {
				return fmt.Errorf("section %s: %w", sec.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return 0, err
		}
		return 0, apperr.Internal(err)
	}

	s.logger.Info().
		Int64("history_id", snap.ID).
		Int64("doctor_id", doctorID).
		Str("numero_record", c.PatientData.NumeroRecord).
		Msg("clinical history created")
	return snap.ID, nil
}

// Get reconstructs a history from its snapshot and section rows.
func (s *Service) Get(ctx context.Context, id int64) (*History, error) {
	snap, err := s.repo.GetSnapshot(ctx, id)
	if errors.Is(err, ErrHistoryNotFound) {
		return nil, apperr.NotFound("history")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	c := NewContent()
	c.PatientData = snap.Patient
	for _, sec := range s.sections {
		rows, err := s.repo.LoadRows(ctx, sec, snap.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if err := sec.Apply(c, rows); err != nil {
			return nil, apperr.Internal(fmt.Errorf("history %d: %w", id, err))
		}
	}

	return &History{
		ID:              snap.ID,
		CreatedAt:       snap.CreatedAt,
		DoctorID:        snap.DoctorID,
		DoctorNombre:    snap.DoctorNombre,
		DoctorApellidos: snap.DoctorApellidos,
		Content:         c,
	}, nil
}

// ListByRecord returns history summaries for a record number, newest visit
// first. An unknown record number yields an empty list.
func (s *Service) ListByRecord(ctx context.Context, numeroRecord string) ([]*Summary, error) {
	out, err := s.repo.ListByRecord(ctx, numeroRecord)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if out == nil {
		out = []*Summary{}
	}
	return out, nil
}

// LatestPatientData returns the demographics of the most recent visit for
// a record number, used to pre-fill a new form.
func (s *Service) LatestPatientData(ctx context.Context, numeroRecord string) (*PatientData, error) {
	snap, err := s.repo.LatestSnapshotByRecord(ctx, numeroRecord)
	if errors.Is(err, ErrHistoryNotFound) {
		return nil, apperr.NotFound("patient")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &snap.Patient, nil
}

// Update is not supported: whether an edit replaces the history in place or
// appends a new snapshot is undecided.
func (s *Service) Update(ctx context.Context, id int64, c *Content) error {
	return apperr.New(apperr.KindNotImplemented, "Updating a clinical history is not implemented.")
}
