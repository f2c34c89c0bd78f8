package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/domain/history"
	"github.com/geriatria/historia-clinica/internal/platform/apperr"
	"github.com/geriatria/historia-clinica/pkg/pagination"
)

// HistoryReader exposes the demographics recorded at a patient's latest
// visit; *history.Service satisfies it.
type HistoryReader interface {
	LatestPatientData(ctx context.Context, numeroRecord string) (*history.PatientData, error)
}

type Service struct {
	repo      Repository
	histories HistoryReader
	logger    zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetHistoryReader completes wiring once the history service exists, since
// that service depends on this one to ensure patients.
func (s *Service) SetHistoryReader(h HistoryReader) {
	s.histories = h
}

// EnsureByRecord is called inside the history transaction.
func (s *Service) EnsureByRecord(ctx context.Context, numeroRecord string) (int64, error) {
	numeroRecord = strings.TrimSpace(numeroRecord)
	if numeroRecord == "" {
		return 0, apperr.Validation("numeroRecord is required")
	}
	id, err := s.repo.EnsureByRecord(ctx, numeroRecord)
	if err != nil {
		return 0, fmt.Errorf("ensure patient %q: %w", numeroRecord, err)
	}
	return id, nil
}

func (s *Service) List(ctx context.Context, page pagination.Params) ([]*Patient, int, error) {
	out, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if out == nil {
		out = []*Patient{}
	}
	return out, total, nil
}

// Get returns the patient with the demographics of its latest visit.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrPatientNotFound) {
		return nil, apperr.NotFound("patient")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	data, err := s.LatestByRecord(ctx, p.NumeroRecord)
	if err != nil {
		return nil, err
	}
	return &Detail{Patient: *p, PatientData: data}, nil
}

func (s *Service) LatestByRecord(ctx context.Context, numeroRecord string) (*history.PatientData, error) {
	if s.histories == nil {
		return nil, apperr.Internal(fmt.Errorf("patient service: history reader not wired"))
	}
	return s.histories.LatestPatientData(ctx, numeroRecord)
}
