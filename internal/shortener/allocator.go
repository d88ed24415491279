package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// SlugLength is the length of generated slugs.
	SlugLength = 6

	// SlugAlphabet is the 62-symbol alphabet generated slugs are drawn from.
	SlugAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultQuota is the maximum number of short URLs a single owner may hold.
	DefaultQuota = 10

	// maxGenerateAttempts caps the collision retry loop for generated slugs.
	maxGenerateAttempts = 5
)

// SlugGenerator produces a random candidate slug.
type SlugGenerator func() string

// Allocator creates short URLs, guaranteeing slug uniqueness and enforcing
// the per-owner quota.
type Allocator struct {
	store        Repository
	generateSlug SlugGenerator
	baseURL      string
	quota        int64
}

// NewAllocator creates an allocator backed by the given repository.
func NewAllocator(store Repository, generator SlugGenerator, baseURL string, quota int64) *Allocator {
	if quota <= 0 {
		quota = DefaultQuota
	}

	return &Allocator{
		store:        store,
		generateSlug: generator,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		quota:        quota,
	}
}

// Create validates the original URL, allocates a unique slug and persists the
// new ShortURL. A non-empty customSlug is used as-is and fails with
// ErrDuplicateSlug when taken; otherwise slugs are generated until one is
// free, capped at maxGenerateAttempts.
func (a *Allocator) Create(ctx context.Context, ownerID int64, originalURL, customSlug string) (*ShortURL, error) {
	if err := ValidateURL(originalURL); err != nil {
		return nil, err
	}

	count, err := a.store.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count owner urls: %w", err)
	}

	if count >= a.quota {
		return nil, ErrQuotaExceeded
	}

	if custom := strings.TrimSpace(customSlug); custom != "" {
		return a.createCustom(ctx, ownerID, originalURL, Slug(custom))
	}

	return a.createGenerated(ctx, ownerID, originalURL)
}

func (a *Allocator) createCustom(ctx context.Context, ownerID int64, originalURL string, slug Slug) (*ShortURL, error) {
	// Best-effort pre-check; the unique constraint on insert is authoritative.
	taken, err := a.store.SlugExists(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	if taken {
		return nil, ErrDuplicateSlug
	}

	shortURL := a.build(ownerID, originalURL, slug)
	if err := a.store.Save(ctx, shortURL); err != nil {
		return nil, err
	}

	return shortURL, nil
}

func (a *Allocator) createGenerated(ctx context.Context, ownerID int64, originalURL string) (*ShortURL, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		slug := Slug(a.generateSlug())

		taken, err := a.store.SlugExists(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}

		if taken {
			continue
		}

		shortURL := a.build(ownerID, originalURL, slug)

		err = a.store.Save(ctx, shortURL)
		if err == nil {
			return shortURL, nil
		}

		// Lost the check-then-insert race; only generated slugs retry.
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}

		return nil, err
	}

	return nil, ErrAllocationExhausted
}

func (a *Allocator) build(ownerID int64, originalURL string, slug Slug) *ShortURL {
	return &ShortURL{
		Slug:        slug,
		OriginalURL: originalURL,
		ShortLink:   a.ShortLink(slug),
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
}

// ShortLink returns the public short-link string for a slug.
func (a *Allocator) ShortLink(slug Slug) string {
	return fmt.Sprintf("%s/%s", a.baseURL, slug)
}

// ValidateURL checks that a raw URL is an absolute web URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
