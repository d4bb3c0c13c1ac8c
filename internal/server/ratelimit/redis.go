package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type counter interface {
	IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

// RedisCounter increments window counters in Redis.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// IncrWithExpire increments key and refreshes its expiry in one round trip.
func (c *RedisCounter) IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, expiration)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RedisLimiter allows RequestsPerMinute+BurstSize calls per key and window.
type RedisLimiter struct {
	counter counter
	cfg     Config
	prefix  string
}

func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return newRedisLimiter(NewRedisCounter(client), cfg)
}

func newRedisLimiter(c counter, cfg Config) *RedisLimiter {
	return &RedisLimiter{counter: c, cfg: cfg, prefix: "donna:ratelimit:chat"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.counter.IncrWithExpire(ctx, k, Window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	d := Decision{
		Allowed:   int(count) <= l.cfg.RequestsPerMinute+l.cfg.BurstSize,
		Limit:     l.cfg.RequestsPerMinute,
		Remaining: remaining(l.cfg.RequestsPerMinute, count),
	}
	if !d.Allowed {
		d.RetryAfter = Window
	}
	return d, nil
}
