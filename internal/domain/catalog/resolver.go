package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// Resolver turns display values into catalog ids.
//
// An empty value resolves to nil. A value with no exact match resolves to
// nil in lenient mode (logged at warn, the foreign key is stored as NULL)
// and to a validation error in strict mode.
type Resolver struct {
	repo   Repository
	strict bool
	logger zerolog.Logger
}

func NewResolver(repo Repository, strict bool, logger zerolog.Logger) *Resolver {
	return &Resolver{repo: repo, strict: strict, logger: logger}
}

func (r *Resolver) Strict() bool { return r.strict }

func (r *Resolver) Resolve(ctx context.Context, catalog Name, value string) (*int32, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	id, err := r.repo.Lookup(ctx, catalog, value)
	if errors.Is(err, ErrValueNotFound) {
		if r.strict {
			return nil, apperr.Validation("unknown %s value %q", catalog, value)
		}
		r.logger.Warn().
			Str("catalog", string(catalog)).
			Str("value", value).
			Msg("catalog value not found, storing null")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// List returns every value of a catalog in display order.
func (r *Resolver) List(ctx context.Context, catalog string) ([]Entry, error) {
	name, err := ParseName(catalog)
	if err != nil {
		return nil, apperr.NotFound("catalog " + catalog)
	}
	entries, err := r.repo.List(ctx, name)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
