package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
)

// Auth validates the caller's token on operations marked with
// auth.MetadataKey and injects the identity into the request context. The
// token is read from the HTTP-only cookie, falling back to an Authorization
// bearer header.
func Auth(api huma.API, tokens *auth.TokenService) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !operationRequiresAuth(ctx) {
			next(ctx)

			return
		}

		raw := tokenFromRequest(ctx)
		if raw == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing auth token")

			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid auth token")

			return
		}

		identity := auth.Identity{UserID: claims.UserID, Email: claims.Email}
		ctx = huma.WithContext(ctx, auth.ContextWithIdentity(ctx.Context(), identity))

		next(ctx)
	}
}

func operationRequiresAuth(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	required, ok := op.Metadata[auth.MetadataKey].(bool)

	return ok && required
}

func tokenFromRequest(ctx huma.Context) string {
	if cookie, err := huma.ReadCookie(ctx, auth.TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if header := ctx.Header("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
