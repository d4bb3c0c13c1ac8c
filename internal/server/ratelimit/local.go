package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter keeps a token bucket per key in memory. Buckets refill at
// RequestsPerMinute and hold up to BurstSize extra tokens.
type LocalLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	cfg      Config
	now      func() time.Time
}

func NewLocalLimiter(cfg Config) *LocalLimiter {
	return &LocalLimiter{
		visitors: make(map[string]*rate.Limiter),
		cfg:      cfg,
		now:      time.Now,
	}
}

func (l *LocalLimiter) visitor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		every := rate.Every(Window / time.Duration(max(l.cfg.RequestsPerMinute, 1)))
		v = rate.NewLimiter(every, max(l.cfg.RequestsPerMinute+l.cfg.BurstSize, 1))
		l.visitors[key] = v
	}
	return v
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	v := l.visitor(key)
	now := l.now()

	r := v.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return Decision{
			Allowed:    false,
			Limit:      l.cfg.RequestsPerMinute,
			RetryAfter: delay,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     l.cfg.RequestsPerMinute,
		Remaining: min(int(v.TokensAt(now)), l.cfg.RequestsPerMinute),
	}, nil
}
