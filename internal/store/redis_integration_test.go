//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}

	t.Cleanup(func() { client.Close() })

	return client
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("serves slug lookups from cache", func(t *testing.T) {
		backing := store.NewMemoryStore()
		cached := store.NewRedisCacheRepository(backing, client, time.Minute)

		shortURL := &shortener.ShortURL{
			Slug:        "cache1",
			OriginalURL: "https://example.com",
			OwnerID:     1,
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, cached.Save(ctx, shortURL))
		defer client.Del(ctx, "slug:cache1")

		got, err := cached.GetBySlug(ctx, "cache1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)

		// Remove from the backing store; a cached read must still succeed.
		require.NoError(t, backing.Delete(ctx, shortURL.ID))

		got, err = cached.GetBySlug(ctx, "cache1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("update invalidates the old slug", func(t *testing.T) {
		backing := store.NewMemoryStore()
		cached := store.NewRedisCacheRepository(backing, client, time.Minute)

		shortURL := &shortener.ShortURL{
			Slug:        "before1",
			OriginalURL: "https://example.com",
			OwnerID:     1,
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, cached.Save(ctx, shortURL))
		defer client.Del(ctx, "slug:before1", "slug:after1")

		shortURL.Slug = "after1"
		require.NoError(t, cached.Update(ctx, shortURL))

		_, err := cached.GetBySlug(ctx, "before1")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		got, err := cached.GetBySlug(ctx, "after1")
		require.NoError(t, err)
		assert.Equal(t, shortener.Slug("after1"), got.Slug)
	})
}

func TestRedisRateLimitStoreIntegration(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	s := store.NewRedisRateLimitStore(client)
	key := "it-ratelimit-key"
	defer client.Del(ctx, "ratelimit:"+key)

	for want := int64(1); want <= 3; want++ {
		count, err := s.Record(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}
}
