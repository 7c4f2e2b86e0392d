// Package ratelimit throttles order firing with a sliding window held in
// a Redis sorted set, one set per register.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter counts events per key over a sliding window. Window and Max are
// fixed at construction; one Limiter guards one route.
type Limiter struct {
	Client *redis.Client
	Prefix string
	Window time.Duration
	Max    int
}

// Decision is the outcome of a single Take.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Take records an event for key and reports whether it fits the window.
// A nil client or non-positive policy disables throttling.
func (l Limiter) Take(ctx context.Context, key string) (Decision, error) {
	resetAt := time.Now().Add(l.Window)
	if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
		return Decision{Allowed: true, Remaining: l.Max, ResetAt: resetAt}, nil
	}

	now := time.Now()
	setKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-l.Window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, setKey, "-inf", cutoff)
	pipe.ZAdd(ctx, setKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, setKey)
	pipe.Expire(ctx, setKey, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{ResetAt: resetAt}, err
	}

	seen := int(count.Val())
	remaining := l.Max - seen
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: seen <= l.Max, Remaining: remaining, ResetAt: resetAt}, nil
}
