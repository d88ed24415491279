package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/visits"
)

// StatsHandler serves per-URL visit analytics to the URL's owner.
type StatsHandler struct {
	urls  shortener.Repository
	store visits.Store
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(urls shortener.Repository, store visits.Store) *StatsHandler {
	return &StatsHandler{
		urls:  urls,
		store: store,
	}
}

// Traffic returns daily visit counts for one of the caller's URLs, ascending
// by date.
func (h *StatsHandler) Traffic(ctx context.Context, req *TrafficRequest) (*TrafficResponse, error) {
	if err := h.authorize(ctx, req.ID); err != nil {
		return nil, err
	}

	series, err := h.store.TrafficDaily(ctx, req.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load traffic stats")
	}

	if series == nil {
		series = []visits.DayCount{}
	}

	return &TrafficResponse{Body: series}, nil
}

// Geo returns location-bucketed visit counts for one of the caller's URLs.
func (h *StatsHandler) Geo(ctx context.Context, req *GeoRequest) (*GeoResponse, error) {
	if err := h.authorize(ctx, req.ID); err != nil {
		return nil, err
	}

	breakdown, err := h.store.GeoBreakdown(ctx, req.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load geo stats")
	}

	if breakdown == nil {
		breakdown = []visits.GeoCount{}
	}

	return &GeoResponse{Body: breakdown}, nil
}

func (h *StatsHandler) authorize(ctx context.Context, urlID int64) error {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return huma.Error401Unauthorized("not authenticated")
	}

	shortURL, err := h.urls.GetByID(ctx, urlID)
	if err != nil {
		return huma.Error404NotFound("short url not found")
	}

	if shortURL.OwnerID != identity.UserID {
		return huma.Error404NotFound("short url not found")
	}

	return nil
}
