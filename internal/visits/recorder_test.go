package visits_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/laudier3/urlcurt/internal/geo"
	"github.com/laudier3/urlcurt/internal/shortener"
	"github.com/laudier3/urlcurt/internal/store"
	"github.com/laudier3/urlcurt/internal/visits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticGeo struct {
	loc *geo.Location
	err error
}

func (s staticGeo) Locate(context.Context, string) (*geo.Location, error) {
	return s.loc, s.err
}

func seedURL(t *testing.T, memStore *store.MemoryStore, slug string) *shortener.ShortURL {
	t.Helper()

	u := &shortener.ShortURL{
		Slug:        shortener.Slug(slug),
		OriginalURL: "https://example.com/page",
		OwnerID:     1,
	}
	require.NoError(t, memStore.Save(context.Background(), u))

	return u
}

func TestResolve(t *testing.T) {
	t.Run("returns original url and records one visit", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		u := seedURL(t, memStore, "abc123")

		rec := visits.NewRecorder(memStore, memStore, geo.Noop{}, zap.NewNop())

		target, err := rec.Resolve(context.Background(), "abc123", "203.0.113.9")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", target)
		assert.Equal(t, 1, memStore.VisitCount(u.ID))

		updated, err := memStore.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Visits)
	})

	t.Run("unknown slug fails and records nothing", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		u := seedURL(t, memStore, "abc123")

		rec := visits.NewRecorder(memStore, memStore, geo.Noop{}, zap.NewNop())

		target, err := rec.Resolve(context.Background(), "missing", "203.0.113.9")

		assert.Empty(t, target)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
		assert.Equal(t, 0, memStore.VisitCount(u.ID))
	})

	t.Run("attaches geo attributes when the lookup resolves", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		u := seedURL(t, memStore, "abc123")

		lookup := staticGeo{loc: &geo.Location{Country: "Brazil", Region: "SP", City: "Sao Paulo"}}
		rec := visits.NewRecorder(memStore, memStore, lookup, zap.NewNop())

		_, err := rec.Resolve(context.Background(), "abc123", "203.0.113.9")
		require.NoError(t, err)

		breakdown, err := memStore.GeoBreakdown(context.Background(), u.ID)
		require.NoError(t, err)
		require.Len(t, breakdown, 1)
		assert.Equal(t, "Brazil", breakdown[0].Country)
		assert.Equal(t, "SP", breakdown[0].Region)
		assert.Equal(t, "Sao Paulo", breakdown[0].City)
		assert.Equal(t, int64(1), breakdown[0].Count)
	})

	t.Run("geo failure does not block the visit or redirect", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		u := seedURL(t, memStore, "abc123")

		lookup := staticGeo{err: errors.New("provider down")}
		rec := visits.NewRecorder(memStore, memStore, lookup, zap.NewNop())

		target, err := rec.Resolve(context.Background(), "abc123", "203.0.113.9")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", target)
		assert.Equal(t, 1, memStore.VisitCount(u.ID))
	})

	t.Run("visit store failure still serves the redirect", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		seedURL(t, memStore, "abc123")

		rec := visits.NewRecorder(memStore, failingVisitStore{}, geo.Noop{}, zap.NewNop())

		target, err := rec.Resolve(context.Background(), "abc123", "")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", target)
	})
}

func TestResolve_ConcurrentVisits(t *testing.T) {
	const n = 50

	memStore := store.NewMemoryStore()
	u := seedURL(t, memStore, "abc123")

	rec := visits.NewRecorder(memStore, memStore, geo.Noop{}, zap.NewNop())

	var wg sync.WaitGroup

	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()

			_, err := rec.Resolve(context.Background(), "abc123", "")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	updated, err := memStore.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), updated.Visits, "lost counter updates")
	assert.Equal(t, n, memStore.VisitCount(u.ID), "lost visit rows")
}

type failingVisitStore struct{}

func (failingVisitStore) Insert(context.Context, *visits.Visit) error {
	return errors.New("insert failed")
}

func (failingVisitStore) TrafficDaily(context.Context, int64) ([]visits.DayCount, error) {
	return nil, nil
}

func (failingVisitStore) GeoBreakdown(context.Context, int64) ([]visits.GeoCount, error) {
	return nil, nil
}
