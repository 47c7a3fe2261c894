package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aurum/jewelstore/internal/domain/cart"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

const cartPrefix = "jewelstore:cart:"

// CartStore keeps carts as JSON in a Backend. Each write refreshes the TTL.
type CartStore struct {
	backend Backend
	ttl     time.Duration
}

// NewCartStore creates a cart store. A zero ttl uses cart.DefaultTTL.
func NewCartStore(backend Backend, ttl time.Duration) *CartStore {
	if ttl <= 0 {
		ttl = cart.DefaultTTL
	}
	return &CartStore{backend: backend, ttl: ttl}
}

func cartKey(id uuid.UUID) string {
	return cartPrefix + id.String()
}

// Get loads a cart or returns shared.ErrNotFound
func (s *CartStore) Get(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	data, ok, err := s.backend.Get(ctx, cartKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return &c, nil
}

// Put saves a cart
func (s *CartStore) Put(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	return s.backend.Set(ctx, cartKey(c.ID), data, s.ttl)
}

// Delete removes a cart
func (s *CartStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.backend.Delete(ctx, cartKey(id))
}

var _ cart.Store = (*CartStore)(nil)
