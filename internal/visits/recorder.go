package visits

import (
	"context"
	"time"

	"github.com/laudier3/urlcurt/internal/geo"
	"github.com/laudier3/urlcurt/internal/shortener"
	"go.uber.org/zap"
)

// defaultGeoTimeout bounds the best-effort geo lookup on the redirect path.
const defaultGeoTimeout = 2 * time.Second

// Recorder resolves a slug to its target URL and durably records one visit.
type Recorder struct {
	urls       shortener.Repository
	store      Store
	geo        geo.Lookup
	logger     *zap.Logger
	geoTimeout time.Duration
}

// NewRecorder creates a visit recorder.
func NewRecorder(urls shortener.Repository, store Store, lookup geo.Lookup, logger *zap.Logger) *Recorder {
	return &Recorder{
		urls:       urls,
		store:      store,
		geo:        lookup,
		logger:     logger,
		geoTimeout: defaultGeoTimeout,
	}
}

// Resolve looks up a slug and returns the original URL for the caller to
// redirect to. On success it appends a Visit row and atomically increments
// the visit counter. Geo lookup is best-effort; storage failures on the
// visit path are logged and never block the redirect.
func (r *Recorder) Resolve(ctx context.Context, slug shortener.Slug, clientIP string) (string, error) {
	shortURL, err := r.urls.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	visit := &Visit{
		URLID:     shortURL.ID,
		Timestamp: time.Now().UTC(),
		IP:        clientIP,
	}

	if loc := r.locate(ctx, clientIP); loc != nil {
		visit.Country = loc.Country
		visit.Region = loc.Region
		visit.City = loc.City
	}

	if err := r.store.Insert(ctx, visit); err != nil {
		r.logger.Error("failed to record visit",
			zap.String("slug", string(slug)),
			zap.Error(err),
		)
	}

	if err := r.urls.IncrementVisits(ctx, shortURL.ID); err != nil {
		r.logger.Error("failed to increment visit counter",
			zap.String("slug", string(slug)),
			zap.Error(err),
		)
	}

	return shortURL.OriginalURL, nil
}

func (r *Recorder) locate(ctx context.Context, ip string) *geo.Location {
	ctx, cancel := context.WithTimeout(ctx, r.geoTimeout)
	defer cancel()

	loc, err := r.geo.Locate(ctx, ip)
	if err != nil {
		r.logger.Debug("geo lookup failed", zap.String("ip", ip), zap.Error(err))

		return nil
	}

	return loc
}
