package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/laudier3/urlcurt/internal/auth"
	"github.com/laudier3/urlcurt/internal/ratelimit"
)

// RegisterRoutes registers every API route with per-endpoint auth and rate
// limit configuration.
func RegisterRoutes(
	api huma.API,
	authHandler *AuthHandler,
	urlHandler *URLHandler,
	statsHandler *StatsHandler,
	redirectHandler *RedirectHandler,
) {
	// Account endpoints. Register and login get strict limits since they are
	// the brute-force surface.
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/register",
		Summary:       "Register an account",
		Description:   "Creates an account and logs the new user in via an HTTP-only cookie.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 5},
					{Window: time.Hour, Max: 20},
				},
			},
		},
	}, authHandler.Register)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/login",
		Summary:     "Log in",
		Description: "Verifies credentials and sets the HTTP-only auth cookie.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 50},
				},
			},
		},
	}, authHandler.Login)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/logout",
		Summary:     "Log out",
		Description: "Clears the auth cookie.",
		Tags:        []string{"Auth"},
	}, authHandler.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/me",
		Summary:     "Current user",
		Description: "Returns the authenticated caller's id and email.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, authHandler.Me)

	huma.Register(api, huma.Operation{
		OperationID: "delete-me",
		Method:      http.MethodDelete,
		Path:        "/api/me",
		Summary:     "Delete account",
		Description: "Removes the caller's account together with their URLs and visit history.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, authHandler.DeleteMe)

	huma.Register(api, huma.Operation{
		OperationID: "recover-password",
		Method:      http.MethodPost,
		Path:        "/api/recover-password",
		Summary:     "Recover password",
		Description: "Sends a password reset link to the account's phone by SMS.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 3},
					{Window: time.Hour, Max: 10},
				},
			},
		},
	}, authHandler.RecoverPassword)

	huma.Register(api, huma.Operation{
		OperationID: "ip-info",
		Method:      http.MethodGet,
		Path:        "/api/ip-info",
		Summary:     "Caller IP info",
		Description: "Reports the caller's IP-derived location.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, authHandler.IPInfo)

	// Short URL management, all owner-scoped.
	huma.Register(api, huma.Operation{
		OperationID:   "create-url",
		Method:        http.MethodPost,
		Path:          "/api/urls",
		Summary:       "Shorten a URL",
		Description:   "Creates a short URL, optionally with a caller-chosen slug.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			auth.MetadataKey: true,
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, urlHandler.CreateURL)

	huma.Register(api, huma.Operation{
		OperationID: "list-urls",
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List URLs",
		Description: "Lists the caller's short URLs, newest first.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.ListURLs)

	huma.Register(api, huma.Operation{
		OperationID: "update-url",
		Method:      http.MethodPut,
		Path:        "/api/urls/{id}",
		Summary:     "Update a URL",
		Description: "Changes a short URL's target and/or slug.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.UpdateURL)

	huma.Register(api, huma.Operation{
		OperationID: "delete-url",
		Method:      http.MethodDelete,
		Path:        "/api/urls/{id}",
		Summary:     "Delete a URL",
		Description: "Removes a short URL and its recorded visits.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, urlHandler.DeleteURL)

	// Analytics.
	huma.Register(api, huma.Operation{
		OperationID: "url-traffic",
		Method:      http.MethodGet,
		Path:        "/api/urls/{id}/traffic",
		Summary:     "Daily traffic",
		Description: "Returns daily visit counts for a short URL, ascending by date.",
		Tags:        []string{"Stats"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, statsHandler.Traffic)

	huma.Register(api, huma.Operation{
		OperationID: "url-geo",
		Method:      http.MethodGet,
		Path:        "/api/urls/{id}/geo",
		Summary:     "Geo breakdown",
		Description: "Returns visit counts grouped by country, region and city.",
		Tags:        []string{"Stats"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, statsHandler.Geo)

	// GET /{slug} - the public redirect. Relaxed limits for read traffic.
	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{slug}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL behind a slug and records the visit.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, redirectHandler.Redirect)
}
