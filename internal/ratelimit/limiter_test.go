package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/laudier3/urlcurt/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(
			ratelimit.NewMemoryStore(),
			ratelimit.LimitConfig{Window: time.Minute, Max: 3},
		)

		for i := 0; i < 3; i++ {
			allowed, err := limiter.Allow(context.Background(), "client-a")
			require.NoError(t, err)
			assert.True(t, allowed, "request %d should be allowed", i+1)
		}
	})

	t.Run("rejects requests over the limit", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(
			ratelimit.NewMemoryStore(),
			ratelimit.LimitConfig{Window: time.Minute, Max: 2},
		)

		_, _ = limiter.Allow(context.Background(), "client-a")
		_, _ = limiter.Allow(context.Background(), "client-a")

		allowed, err := limiter.Allow(context.Background(), "client-a")
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindowLimiter(
			ratelimit.NewMemoryStore(),
			ratelimit.LimitConfig{Window: time.Minute, Max: 1},
		)

		_, _ = limiter.Allow(context.Background(), "client-a")

		allowed, err := limiter.Allow(context.Background(), "client-b")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		store := ratelimit.NewMemoryStore()
		limiter := ratelimit.NewSlidingWindowLimiter(
			store,
			ratelimit.LimitConfig{Window: 20 * time.Millisecond, Max: 1},
		)

		allowed, err := limiter.Allow(context.Background(), "client-a")
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, _ = limiter.Allow(context.Background(), "client-a")
		require.False(t, allowed)

		time.Sleep(30 * time.Millisecond)

		allowed, err = limiter.Allow(context.Background(), "client-a")
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
