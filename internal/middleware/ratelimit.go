package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client. Endpoints may override or disable
// the default limit via ratelimit.EndpointConfig in operation metadata.
func RateLimiter(
	api huma.API,
	store ratelimit.Store,
	defaultLimit ratelimit.LimitConfig,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		limits := []ratelimit.LimitConfig{defaultLimit}

		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil {
			if cfg.Disabled {
				next(ctx)

				return
			}

			if len(cfg.Limits) > 0 {
				limits = cfg.Limits
			}
		}

		key := clientKey(ctx)
		path := operationPath(ctx)

		for _, limit := range limits {
			// Counters are tracked per client, route template and window.
			windowKey := fmt.Sprintf("%s:%s:%d", key, path, limit.Window.Milliseconds())

			count, err := store.Record(ctx.Context(), windowKey, limit.Window)
			if err != nil {
				logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

				return
			}

			if count > limit.Max {
				logger.Warn("rate limit exceeded",
					zap.String("path", path),
					zap.String("method", ctx.Method()),
					zap.Int64("count", count),
					zap.Int64("max", limit.Max),
					zap.Duration("window", limit.Window),
					zap.String("client_ip", clientIP(ctx)),
				)
				_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded: %d/%d requests in %s", count, limit.Max, limit.Window))

				return
			}
		}

		next(ctx)
	}
}

// clientKey builds a stable rate limit key from client IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
