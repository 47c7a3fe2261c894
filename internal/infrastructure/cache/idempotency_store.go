package cache

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
)

const idempotencyPrefix = "jewelstore:event:processed:"

// IdempotencyStore records processed event ids in a Backend
type IdempotencyStore struct {
	backend Backend
}

// NewIdempotencyStore creates a store on backend
func NewIdempotencyStore(backend Backend) *IdempotencyStore {
	return &IdempotencyStore{backend: backend}
}

// MarkProcessed atomically claims an event id
func (s *IdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.backend.SetNX(ctx, idempotencyPrefix+eventID, []byte("1"), ttl)
}

// IsProcessed reports whether the event id has been claimed
func (s *IdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	_, ok, err := s.backend.Get(ctx, idempotencyPrefix+eventID)
	return ok, err
}

var _ shared.IdempotencyStore = (*IdempotencyStore)(nil)
