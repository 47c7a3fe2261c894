package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ratePrefix     = "jewelstore:rate:"
	DefaultRateTTL = 5 * time.Minute

	// generationTTL outlives any in-flight fill
	generationTTL = 24 * time.Hour
)

// rateSnapshot is the cached form of an active MetalRate
type rateSnapshot struct {
	ID          uuid.UUID            `json:"id"`
	Metal       pricing.Metal        `json:"metal"`
	Purity      string               `json:"purity"`
	Market      valueobject.Market   `json:"market"`
	RatePerGram decimal.Decimal      `json:"rate_per_gram"`
	Currency    valueobject.Currency `json:"currency"`
	Source      string               `json:"source"`
	EffectiveAt time.Time            `json:"effective_at"`
	Version     int                  `json:"version"`
}

func snapshotOf(r *pricing.MetalRate) rateSnapshot {
	return rateSnapshot{
		ID:          r.ID,
		Metal:       r.Metal,
		Purity:      r.Purity,
		Market:      r.Market,
		RatePerGram: r.RatePerGram,
		Currency:    r.Currency,
		Source:      r.Source,
		EffectiveAt: r.EffectiveAt,
		Version:     r.Version,
	}
}

func (s rateSnapshot) rate() *pricing.MetalRate {
	r := &pricing.MetalRate{
		Metal:       s.Metal,
		Purity:      s.Purity,
		Market:      s.Market,
		RatePerGram: s.RatePerGram,
		Currency:    s.Currency,
		Source:      s.Source,
		EffectiveAt: s.EffectiveAt,
	}
	r.ID = s.ID
	r.Version = s.Version
	r.IsActive = true
	return r
}

// CachedRateLookup is a read-through cache in front of the rate repository.
// Missing rates are not cached so a newly added rate is visible immediately.
//
// Every Invalidate bumps a generation marker for the key. A fill only stores
// what it loaded when the marker is unchanged across the repository read, so
// a reader that raced a rate change cannot put the old rate back.
type CachedRateLookup struct {
	next    pricing.RateLookup
	backend Backend
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCachedRateLookup wraps next. A zero ttl uses DefaultRateTTL.
func NewCachedRateLookup(next pricing.RateLookup, backend Backend, ttl time.Duration, logger *zap.Logger) *CachedRateLookup {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &CachedRateLookup{next: next, backend: backend, ttl: ttl, logger: logger}
}

func rateCacheKey(key pricing.RateKey) string {
	return ratePrefix + key.String()
}

func rateGenerationKey(key pricing.RateKey) string {
	return ratePrefix + "gen:" + key.String()
}

// RatePerGram returns the cached rate or loads and caches it
func (c *CachedRateLookup) RatePerGram(ctx context.Context, key pricing.RateKey) (*pricing.MetalRate, error) {
	cacheKey := rateCacheKey(key)

	data, ok, err := c.backend.Get(ctx, cacheKey)
	if err != nil {
		c.logger.Warn("rate cache read failed", zap.String("key", cacheKey), zap.Error(err))
	}
	if ok {
		var snap rateSnapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			return snap.rate(), nil
		}
		c.logger.Warn("discarding corrupt rate cache entry", zap.String("key", cacheKey))
		if err := c.backend.Delete(ctx, cacheKey); err != nil {
			c.logger.Warn("rate cache delete failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	gen, genErr := c.generation(ctx, key)
	rate, err := c.next.RatePerGram(ctx, key)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return rate, nil
	}
	if now, err := c.generation(ctx, key); err != nil || now != gen {
		c.logger.Debug("rate changed while loading, not caching", zap.String("key", cacheKey))
		return rate, nil
	}

	if data, err := json.Marshal(snapshotOf(rate)); err == nil {
		if _, err := c.backend.SetNX(ctx, cacheKey, data, c.ttl); err != nil {
			c.logger.Warn("rate cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return rate, nil
}

func (c *CachedRateLookup) generation(ctx context.Context, key pricing.RateKey) (string, error) {
	data, _, err := c.backend.Get(ctx, rateGenerationKey(key))
	if err != nil {
		c.logger.Warn("rate generation read failed", zap.String("key", key.String()), zap.Error(err))
		return "", err
	}
	return string(data), nil
}

// Invalidate drops the cached rate for key and fences off fills that were
// already loading it
func (c *CachedRateLookup) Invalidate(ctx context.Context, key pricing.RateKey) error {
	if err := c.backend.Set(ctx, rateGenerationKey(key), []byte(uuid.NewString()), generationTTL); err != nil {
		return err
	}
	return c.backend.Delete(ctx, rateCacheKey(key))
}

var _ pricing.RateLookup = (*CachedRateLookup)(nil)
