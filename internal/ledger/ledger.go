// Package ledger manages a user's accounts, categories and transactions and
// derives account balances from the transaction history.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/store"
)

// Invalidator drops cached views of a user's data after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uuid.UUID) {}

// Service applies ownership, uniqueness and referential rules on top of the
// store. Every method takes the authenticated user's identifier.
type Service struct {
	store store.Store
	cache Invalidator
	now   func() time.Time
}

// NewService returns a service writing to st. cache may be nil.
func NewService(st store.Store, cache Invalidator) *Service {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &Service{store: st, cache: cache, now: time.Now}
}

// lookup maps a missing row to a 404.
func lookup(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Missing()
	}
	return err
}

// ParseID parses a path identifier. Malformed identifiers cannot name an
// existing row, so they are reported as not found.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Missing()
	}
	return id, nil
}
