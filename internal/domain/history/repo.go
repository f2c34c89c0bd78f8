package history

import (
	"context"
	"errors"
)

var ErrHistoryNotFound = errors.New("history not found")

type Repository interface {
	// CreateSnapshot inserts the parent row and fills ID and CreatedAt.
	CreateSnapshot(ctx context.Context, s *Snapshot) error
	// InsertRows writes rows of one section for the snapshot.
	InsertRows(ctx context.Context, sec Section, snapshotID int64, rows []Row) error
	// GetSnapshot returns the snapshot joined with catalogs and doctor, or
	// ErrHistoryNotFound.
	GetSnapshot(ctx context.Context, id int64) (*Snapshot, error)
	// LatestSnapshotByRecord returns the most recent snapshot by visit date,
	// or ErrHistoryNotFound.
	LatestSnapshotByRecord(ctx context.Context, numeroRecord string) (*Snapshot, error)
	LoadRows(ctx context.Context, sec Section, snapshotID int64) ([]Row, error)
	ListByRecord(ctx context.Context, numeroRecord string) ([]*Summary, error)
}
