package shortener

import "context"

// Repository defines the storage operations for short URLs.
//
// Save must rely on a unique constraint on the slug column and return
// ErrDuplicateSlug on a violation; callers treat any pre-insert existence
// check as an optimization only.
type Repository interface {
	Save(ctx context.Context, shortURL *ShortURL) error
	GetBySlug(ctx context.Context, slug Slug) (*ShortURL, error)
	GetByID(ctx context.Context, id int64) (*ShortURL, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*ShortURL, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
	SlugExists(ctx context.Context, slug Slug) (bool, error)
	Update(ctx context.Context, shortURL *ShortURL) error
	Delete(ctx context.Context, id int64) error

	// IncrementVisits atomically bumps the visit counter by one. It must be
	// a storage-level increment, not read-modify-write, so concurrent
	// redirects never lose updates.
	IncrementVisits(ctx context.Context, id int64) error
}
