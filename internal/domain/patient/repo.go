package patient

import (
	"context"
	"errors"

	"github.com/geriatria/historia-clinica/pkg/pagination"
)

var ErrPatientNotFound = errors.New("patient not found")

type Repository interface {
	// EnsureByRecord returns the id of the patient with the record number,
	// creating it when absent. Concurrent callers get the same id.
	EnsureByRecord(ctx context.Context, numeroRecord string) (int64, error)
	// List returns a page of patients ordered by latest visit and the total
	// number of patients.
	List(ctx context.Context, page pagination.Params) ([]*Patient, int, error)
	// GetByID returns one list row, or ErrPatientNotFound when the id is
	// unknown or has no histories.
	GetByID(ctx context.Context, id int64) (*Patient, error)
}
