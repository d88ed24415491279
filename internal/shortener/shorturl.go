package shortener

import (
	"errors"
	"time"
)

// Slug is the short unique identifier of a shortened URL.
type Slug string

// ShortURL maps a slug to its original URL plus ownership and visit metadata.
type ShortURL struct {
	ID          int64
	Slug        Slug
	OriginalURL string
	ShortLink   string
	OwnerID     int64
	Visits      int64
	CreatedAt   time.Time
}

var (
	// ErrNotFound is returned when no ShortURL exists for a slug or id.
	ErrNotFound = errors.New("short url not found")

	// ErrDuplicateSlug is returned when a slug is already taken.
	ErrDuplicateSlug = errors.New("slug already taken")

	// ErrQuotaExceeded is returned when the owner has reached their URL quota.
	ErrQuotaExceeded = errors.New("url quota exceeded")

	// ErrInvalidURL is returned when the original URL fails validation.
	ErrInvalidURL = errors.New("invalid url")

	// ErrAllocationExhausted is returned when slug generation keeps colliding.
	ErrAllocationExhausted = errors.New("slug allocation exhausted")

	// ErrForbidden is returned on an ownership mismatch.
	ErrForbidden = errors.New("not the owner")
)
