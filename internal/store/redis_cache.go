package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a shortener.Repository with Redis caching for
// slug lookups, the hot path behind every redirect. Entries carry a TTL, so a
// stale visit counter inside a cached row self-heals; callers that need the
// live counter read by id or owner, which always hits the store.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "slug:",
		ttl:    ttl,
	}
}

// Save stores a short URL in the underlying store and warms the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := r.store.Save(ctx, shortURL); err != nil {
		return err
	}

	r.cacheURL(ctx, shortURL)

	return nil
}

// GetBySlug retrieves a short URL by slug, checking the cache first.
func (r *RedisCacheRepository) GetBySlug(ctx context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, slug); err == nil {
		return url, nil
	}

	url, err := r.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url)

	return url, nil
}

func (r *RedisCacheRepository) GetByID(ctx context.Context, id int64) (*shortener.ShortURL, error) {
	return r.store.GetByID(ctx, id)
}

func (r *RedisCacheRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*shortener.ShortURL, error) {
	return r.store.ListByOwner(ctx, ownerID)
}

func (r *RedisCacheRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return r.store.CountByOwner(ctx, ownerID)
}

func (r *RedisCacheRepository) SlugExists(ctx context.Context, slug shortener.Slug) (bool, error) {
	return r.store.SlugExists(ctx, slug)
}

// Update rewrites the row and drops the cache entries for both the previous
// and the new slug.
func (r *RedisCacheRepository) Update(ctx context.Context, shortURL *shortener.ShortURL) error {
	previous, err := r.store.GetByID(ctx, shortURL.ID)
	if err != nil {
		return err
	}

	if err := r.store.Update(ctx, shortURL); err != nil {
		return err
	}

	r.invalidate(ctx, previous.Slug, shortURL.Slug)

	return nil
}

// Delete removes the row and its cache entry.
func (r *RedisCacheRepository) Delete(ctx context.Context, id int64) error {
	previous, err := r.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, previous.Slug)

	return nil
}

// IncrementVisits passes through to the store. The cached copy keeps its old
// counter until the TTL expires; the redirect path only needs the target URL.
func (r *RedisCacheRepository) IncrementVisits(ctx context.Context, id int64) error {
	return r.store.IncrementVisits(ctx, id)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, slug shortener.Slug) (*shortener.ShortURL, error) {
	payload, err := r.client.Get(ctx, r.prefix+string(slug)).Bytes()
	if err != nil {
		return nil, err
	}

	var url shortener.ShortURL
	if err := json.Unmarshal(payload, &url); err != nil {
		return nil, err
	}

	return &url, nil
}

func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL) {
	payload, err := json.Marshal(url)
	if err != nil {
		return
	}

	// Best-effort; a cache write failure never fails the operation.
	_ = r.client.Set(ctx, r.prefix+string(url.Slug), payload, r.ttl).Err()
}

func (r *RedisCacheRepository) invalidate(ctx context.Context, slugs ...shortener.Slug) {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, r.prefix+string(slug))
	}

	_ = r.client.Del(ctx, keys...).Err()
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
