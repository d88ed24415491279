package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler manages the caller's short URLs.
type URLHandler struct {
	allocator *shortener.Allocator
	urls      shortener.Repository
	logger    *zap.Logger
}

// NewURLHandler creates a URL handler.
func NewURLHandler(allocator *shortener.Allocator, urls shortener.Repository, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		allocator: allocator,
		urls:      urls,
		logger:    logger,
	}
}

// CreateURL shortens a URL for the authenticated caller.
func (h *URLHandler) CreateURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	shortURL, err := h.allocator.Create(ctx, identity.UserID, req.Body.OriginalURL, req.Body.CustomSlug)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("originalUrl must be an absolute http or https URL")
		case errors.Is(err, shortener.ErrQuotaExceeded):
			return nil, huma.Error403Forbidden("url quota reached, delete an existing url first")
		case errors.Is(err, shortener.ErrDuplicateSlug):
			return nil, huma.Error409Conflict("this slug is already taken")
		default:
			h.logger.Error("failed to create short url",
				zap.Int64("owner_id", identity.UserID),
				zap.Error(err),
			)

			return nil, huma.Error500InternalServerError("failed to create short url")
		}
	}

	return &CreateURLResponse{Body: toPayload(shortURL)}, nil
}

// ListURLs returns the caller's short URLs, newest first.
func (h *URLHandler) ListURLs(ctx context.Context, _ *struct{}) (*ListURLsResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	urls, err := h.urls.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list urls")
	}

	resp := &ListURLsResponse{}
	resp.Body.URLs = make([]ShortURLPayload, 0, len(urls))

	for _, u := range urls {
		resp.Body.URLs = append(resp.Body.URLs, toPayload(u))
	}

	return resp, nil
}

// UpdateURL changes a short URL's target and/or slug. The URL must belong to
// the caller; a mismatch reads the same as a missing id.
func (h *URLHandler) UpdateURL(ctx context.Context, req *UpdateURLRequest) (*UpdateURLResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	shortURL, err := h.ownedURL(ctx, req.ID, identity.UserID)
	if err != nil {
		return nil, err
	}

	if target := strings.TrimSpace(req.Body.OriginalURL); target != "" {
		if err := shortener.ValidateURL(target); err != nil {
			return nil, huma.Error400BadRequest("originalUrl must be an absolute http or https URL")
		}

		shortURL.OriginalURL = target
	}

	if slug := shortener.Slug(strings.TrimSpace(req.Body.Slug)); slug != "" && slug != shortURL.Slug {
		taken, err := h.urls.SlugExists(ctx, slug)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update url")
		}

		if taken {
			return nil, huma.Error409Conflict("this slug is already taken")
		}

		shortURL.Slug = slug
		shortURL.ShortLink = h.allocator.ShortLink(slug)
	}

	if err := h.urls.Update(ctx, shortURL); err != nil {
		if errors.Is(err, shortener.ErrDuplicateSlug) {
			return nil, huma.Error409Conflict("this slug is already taken")
		}

		return nil, huma.Error500InternalServerError("failed to update url")
	}

	return &UpdateURLResponse{Body: toPayload(shortURL)}, nil
}

// DeleteURL removes a short URL and its recorded visits.
func (h *URLHandler) DeleteURL(ctx context.Context, req *DeleteURLRequest) (*DeleteURLResponse, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	if _, err := h.ownedURL(ctx, req.ID, identity.UserID); err != nil {
		return nil, err
	}

	if err := h.urls.Delete(ctx, req.ID); err != nil {
		return nil, huma.Error500InternalServerError("failed to delete url")
	}

	resp := &DeleteURLResponse{}
	resp.Body.Message = "url deleted"

	return resp, nil
}

// ownedURL loads a short URL and verifies ownership. Both a missing id and a
// foreign owner come back as 404 so ids cannot be probed.
func (h *URLHandler) ownedURL(ctx context.Context, id, ownerID int64) (*shortener.ShortURL, error) {
	shortURL, err := h.urls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to load url")
	}

	if shortURL.OwnerID != ownerID {
		return nil, huma.Error404NotFound("short url not found")
	}

	return shortURL, nil
}

func toPayload(u *shortener.ShortURL) ShortURLPayload {
	return ShortURLPayload{
		ID:          u.ID,
		Slug:        string(u.Slug),
		OriginalURL: u.OriginalURL,
		ShortURL:    u.ShortLink,
		Visits:      u.Visits,
		CreatedAt:   u.CreatedAt,
	}
}
