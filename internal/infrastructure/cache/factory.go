package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCleanupInterval = time.Minute

// NewRedisClient opens a Redis client and pings it
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Option configures NewBackend
type Option func(*factoryOptions)

type factoryOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the chosen backend
func WithLogger(logger *zap.Logger) Option {
	return func(o *factoryOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to memory
func WithInMemoryFallback(allow bool) Option {
	return func(o *factoryOptions) {
		o.allowFallback = allow
	}
}

// NewBackend returns a Redis backend when Redis is enabled and reachable,
// otherwise a MemoryBackend. The returned client is nil for the memory backend.
func NewBackend(cfg config.RedisConfig, opts ...Option) (Backend, *redis.Client, error) {
	o := factoryOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("redis disabled, using in-memory cache")
		return NewMemoryBackend(defaultCleanupInterval), nil, nil
	}

	client, err := NewRedisClient(cfg)
	if err == nil {
		o.logger.Info("using redis cache", zap.String("addr", cfg.Addr()))
		return &RedisBackend{client: client, ownClient: true}, client, nil
	}
	if !o.allowFallback {
		return nil, nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	o.logger.Warn("redis unavailable, falling back to in-memory cache; carts and revocations will not be shared between instances",
		zap.Error(err),
	)
	return NewMemoryBackend(defaultCleanupInterval), nil, nil
}
