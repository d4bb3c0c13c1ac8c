// Package ratelimit throttles chat requests per user. Two implementations
// exist: a fixed one-minute window kept in Redis, shared by every replica,
// and an in-process token bucket per key for single-node deployments.
package ratelimit

import (
	"context"
	"time"
)

// Window is the accounting period of the limits.
const Window = time.Minute

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Config mirrors the chat limit settings.
type Config struct {
	RequestsPerMinute int
	BurstSize         int
}

func remaining(limit int, used int64) int {
	r := limit - int(used)
	if r < 0 {
		return 0
	}
	return r
}
