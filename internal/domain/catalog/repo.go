package catalog

import (
	"context"
	"errors"
)

var ErrValueNotFound = errors.New("catalog value not found")

type Repository interface {
	// Lookup returns the id whose nombre equals value exactly, or
	// ErrValueNotFound.
	Lookup(ctx context.Context, catalog Name, value string) (int32, error)
	List(ctx context.Context, catalog Name) ([]Entry, error)
}
