// Package ratelimit throttles public submission endpoints per client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

const keyPrefix = "newsroom:ratelimit"

// Key builds the counter key for a client in the window starting at windowStart
func Key(scope, client string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, scope, client, windowStart.Unix())
}

// RedisLimiter is a fixed-window counter stored in Redis
type RedisLimiter struct {
	inner  *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewRedisLimiter connects to Redis and verifies the connection
func NewRedisLimiter(ctx context.Context, addr, password string, db, limit int, window time.Duration, log zerolog.Logger) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisLimiter{
		inner:  client,
		limit:  limit,
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "rate_limiter").Logger(),
	}, nil
}

// Allow counts one request for key. Redis failures let the request through.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := r.now().Truncate(r.window)
	redisKey := Key("submit", key, start)

	count, err := r.inner.Incr(ctx, redisKey).Result()
	if err != nil {
		r.log.Warn().Err(err).Str("key", redisKey).Msg("Rate limit check failed, allowing request")
		return true, err
	}
	if count == 1 {
		if err := r.inner.Expire(ctx, redisKey, r.window).Err(); err != nil {
			r.log.Warn().Err(err).Str("key", redisKey).Msg("Failed to set rate limit expiry")
		}
	}
	return count <= int64(r.limit), nil
}

func (r *RedisLimiter) Close() error {
	return r.inner.Close()
}

// Noop allows everything; used when no Redis is configured
type Noop struct{}

func (Noop) Allow(ctx context.Context, key string) (bool, error) { return true, nil }

func (Noop) Close() error { return nil }
