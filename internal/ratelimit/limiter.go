package ratelimit

import (
	"context"
	"time"
)

// Store is the backing storage for request counters.
type Store interface {
	// Record records a request and returns the count of requests in the
	// current window, pruning expired entries.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// LimitConfig is one window/max pair.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Limiter checks whether a request from a client key should be allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, err error)
}

// SlidingWindowLimiter applies a single sliding-window limit.
type SlidingWindowLimiter struct {
	store Store
	limit LimitConfig
}

// NewSlidingWindowLimiter creates a sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit LimitConfig) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store: store,
		limit: limit,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, key, l.limit.Window)
	if err != nil {
		return false, err
	}

	return count <= l.limit.Max, nil
}
