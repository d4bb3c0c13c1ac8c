package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
	ttl    time.Duration
}

func (f *fakeCounter) IncrWithExpire(_ context.Context, key string, expiration time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	f.ttl = expiration
	return f.counts[key], nil
}

func TestRedisLimiter_Allow(t *testing.T) {
	c := &fakeCounter{}
	l := newRedisLimiter(c, Config{RequestsPerMinute: 2, BurstSize: 1})
	ctx := context.Background()

	wantRemaining := []int{1, 0, 0}
	for i, want := range wantRemaining {
		d, err := l.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, want, d.Remaining)
		assert.Equal(t, 2, d.Limit)
	}

	d, err := l.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, Window, d.RetryAfter)

	assert.Equal(t, int64(4), c.counts["donna:ratelimit:chat:u1"])
	assert.Equal(t, Window, c.ttl)
}

func TestRedisLimiter_CounterError(t *testing.T) {
	l := newRedisLimiter(&fakeCounter{err: errors.New("connection refused")}, Config{RequestsPerMinute: 1})

	_, err := l.Allow(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisCounter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, Config{RequestsPerMinute: 1})
	_, err := l.Allow(context.Background(), "u1")
	assert.Error(t, err)
}
