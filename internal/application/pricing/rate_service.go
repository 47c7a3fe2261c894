package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RateService manages metal rates from the back-office
type RateService struct {
	repo   pricing.MetalRateRepository
	cache  RateInvalidator
	events shared.EventPublisher
	logger *zap.Logger
}

// NewRateService creates a new RateService. cache may be nil when rates are not cached.
func NewRateService(repo pricing.MetalRateRepository, cache RateInvalidator, events shared.EventPublisher, logger *zap.Logger) *RateService {
	return &RateService{repo: repo, cache: cache, events: events, logger: logger}
}

// List returns rates matching the filter and the total count
func (s *RateService) List(ctx context.Context, filter shared.Filter) ([]RateResponse, int64, error) {
	rates, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RateResponse, len(rates))
	for i := range rates {
		out[i] = ToRateResponse(&rates[i])
	}
	return out, total, nil
}

// GetByID returns one rate
func (s *RateService) GetByID(ctx context.Context, id uuid.UUID) (*RateResponse, error) {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// Upsert creates the rate for a key or replaces the existing one, reactivating it if retired
func (s *RateService) Upsert(ctx context.Context, req UpsertRateRequest) (*RateResponse, error) {
	key, err := pricing.NewRateKey(req.Metal, req.Purity, req.Market)
	if err != nil {
		return nil, err
	}

	rate, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		if err := rate.SetRate(req.RatePerGram, req.Source); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		rate, err = pricing.NewMetalRate(key, req.RatePerGram, req.Source)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.save(ctx, rate); err != nil {
		return nil, err
	}
	s.logger.Info("Metal rate upserted",
		zap.String("key", key.String()),
		zap.String("rate_per_gram", rate.RatePerGram.String()))

	resp := ToRateResponse(rate)
	return &resp, nil
}

// Update changes the rate of an existing row
func (s *RateService) Update(ctx context.Context, id uuid.UUID, req UpdateRateRequest) (*RateResponse, error) {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rate.SetRate(req.RatePerGram, req.Source); err != nil {
		return nil, err
	}
	if err := s.save(ctx, rate); err != nil {
		return nil, err
	}
	resp := ToRateResponse(rate)
	return &resp, nil
}

// Delete retires a rate. Pricing for its key becomes unavailable.
func (s *RateService) Delete(ctx context.Context, id uuid.UUID) error {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := rate.Retire(); err != nil {
		return err
	}
	if err := s.save(ctx, rate); err != nil {
		return err
	}
	s.logger.Info("Metal rate retired", zap.String("key", rate.Key().String()))
	return nil
}

func (s *RateService) save(ctx context.Context, rate *pricing.MetalRate) error {
	if err := s.repo.Save(ctx, rate); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rate.Key()); err != nil {
			return fmt.Errorf("invalidate cached rate %s: %w", rate.Key(), err)
		}
	}
	if err := shared.PublishAndClear(ctx, s.events, rate); err != nil {
		s.logger.Warn("Failed to publish metal rate events", zap.Error(err))
	}
	return nil
}
