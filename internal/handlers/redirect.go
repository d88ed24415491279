package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/visits"
)

// RedirectHandler serves the public slug redirect.
type RedirectHandler struct {
	recorder *visits.Recorder
}

// NewRedirectHandler creates a redirect handler.
func NewRedirectHandler(recorder *visits.Recorder) *RedirectHandler {
	return &RedirectHandler{recorder: recorder}
}

// Redirect resolves a slug and issues a 302 to the original URL, recording
// the visit along the way.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	target, err := h.recorder.Resolve(ctx, shortener.Slug(req.Slug), meta.ClientIP)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		return nil, huma.Error500InternalServerError("failed to resolve short url")
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = target

	return resp, nil
}
