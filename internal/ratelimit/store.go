// Package ratelimit provides the stores behind the inbound rate limiter.
//
// Serverless instances share no memory, so when a Redis URL is configured the
// request counters live in Redis and every instance enforces the same budget.
// Without one the limiter falls back to echo's in-memory token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"proposal-generator/internal/config"
	"proposal-generator/internal/logging"
)

const keyPrefix = "proposal:ratelimit"

// NewStore returns the rate limiter store described by cfg together with a
// function that releases its resources
func NewStore(cfg *config.Config) (echomiddleware.RateLimiterStore, func() error, error) {
	if cfg.RateLimit.RedisURL == "" {
		store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.RateLimit.RequestsPerMinute) / 60),
			Burst:     cfg.RateLimit.Burst,
			ExpiresIn: cfg.RateLimit.ExpiresIn,
		})
		return store, func() error { return nil }, nil
	}

	store, err := NewRedisStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// RedisStore is a fixed-window counter shared through Redis. It implements
// echo's RateLimiterStore.
type RedisStore struct {
	client  *redis.Client
	limit   int64
	window  time.Duration
	timeout time.Duration
	logger  logging.Logger
	now     func() time.Time
}

// NewRedisStore connects to cfg.RateLimit.RedisURL. The connection is lazy;
// an unreachable server surfaces on the first Allow call.
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	timeout := cfg.RateLimit.RedisTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return NewRedisStoreWithClient(redis.NewClient(opts), cfg.RateLimit.RequestsPerMinute, time.Minute, timeout), nil
}

// NewRedisStoreWithClient builds a store on an existing client allowing limit
// requests per identifier in each window
func NewRedisStoreWithClient(client *redis.Client, limit int, window, timeout time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		limit:   int64(limit),
		window:  window,
		timeout: timeout,
		logger:  logging.GetGlobalLogger(),
		now:     time.Now,
	}
}

// Allow counts the request against the identifier's current window. Redis
// failures let the request through: the limiter must never take the service
// down with it.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.windowKey(identifier, s.now())

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Rate limit store unavailable, allowing request", map[string]interface{}{
			"identifier": identifier,
		})
		return true, nil
	}

	return count.Val() <= s.limit, nil
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// windowKey returns the counter key for the identifier in the window containing t
func (s *RedisStore) windowKey(identifier string, t time.Time) string {
	window := t.UnixNano() / int64(s.window)
	return fmt.Sprintf("%s:%s:%d", keyPrefix, identifier, window)
}
