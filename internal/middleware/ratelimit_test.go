package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/laudier3/urlcurt/internal/middleware"
	"github.com/laudier3/urlcurt/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupRateLimitAPI(t *testing.T, defaultLimit ratelimit.LimitConfig) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RateLimiter(api, ratelimit.NewMemoryStore(), defaultLimit, zap.NewNop()))

	huma.Get(api, "/default", func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "strict",
		Method:      http.MethodGet,
		Path:        "/strict",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 2}},
			},
		},
	}, func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "unlimited",
		Method:      http.MethodGet,
		Path:        "/unlimited",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return &testOutput{Body: "ok"}, nil
	})

	return router
}

func get(router *chi.Mux, path string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "TestAgent/1.0")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiter(t *testing.T) {
	t.Run("applies the default limit", func(t *testing.T) {
		router := setupRateLimitAPI(t, ratelimit.LimitConfig{Window: time.Minute, Max: 3})

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, get(router, "/default"))
		}

		assert.Equal(t, http.StatusTooManyRequests, get(router, "/default"))
	})

	t.Run("endpoint config overrides the default", func(t *testing.T) {
		router := setupRateLimitAPI(t, ratelimit.LimitConfig{Window: time.Minute, Max: 100})

		assert.Equal(t, http.StatusOK, get(router, "/strict"))
		assert.Equal(t, http.StatusOK, get(router, "/strict"))
		assert.Equal(t, http.StatusTooManyRequests, get(router, "/strict"))
	})

	t.Run("disabled endpoints bypass limits entirely", func(t *testing.T) {
		router := setupRateLimitAPI(t, ratelimit.LimitConfig{Window: time.Minute, Max: 1})

		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, get(router, "/unlimited"))
		}
	})

	t.Run("limits are tracked per route", func(t *testing.T) {
		router := setupRateLimitAPI(t, ratelimit.LimitConfig{Window: time.Minute, Max: 1})

		assert.Equal(t, http.StatusOK, get(router, "/default"))
		assert.Equal(t, http.StatusTooManyRequests, get(router, "/default"))

		// A different route keeps its own counter.
		assert.Equal(t, http.StatusOK, get(router, "/strict"))
	})
}
