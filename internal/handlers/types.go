package handlers

import (
	"net/http"
	"time"

	"github.com/laudier3/urlcurt/internal/visits"
)

// RegisterRequest is the body for creating an account.
type RegisterRequest struct {
	Body struct {
		Name     string `doc:"Display name"             json:"name"     minLength:"1"`
		Email    string `doc:"Email address"            format:"email"  json:"email"`
		Password string `doc:"Plaintext password"       json:"password" minLength:"6"`
		Phone    string `doc:"Phone number for SMS"     json:"phone"    minLength:"1"`
		Age      int    `doc:"Age in years"             json:"age"      minimum:"1"`
	}
}

// RegisterResponse returns the freshly issued token and sets the auth cookie.
type RegisterResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Token string `json:"token"`
	}
}

// LoginRequest is the body for logging in.
type LoginRequest struct {
	Body struct {
		Email    string `format:"email" json:"email"`
		Password string `json:"password" minLength:"1"`
	}
}

// LoginResponse sets the HTTP-only auth cookie and echoes the token.
type LoginResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Token string `json:"token"`
	}
}

// LogoutResponse clears the auth cookie.
type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// MeResponse identifies the authenticated caller.
type MeResponse struct {
	Body struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
}

// DeleteMeResponse confirms account removal.
type DeleteMeResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

// RecoverPasswordRequest asks for a reset link over SMS.
type RecoverPasswordRequest struct {
	Body struct {
		Phone string `json:"phone" minLength:"1"`
	}
}

// RecoverPasswordResponse confirms the SMS was sent.
type RecoverPasswordResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// IPInfoResponse reports the caller's IP-derived location.
type IPInfoResponse struct {
	Body struct {
		IP      string `json:"ip"`
		Country string `json:"country"`
		Region  string `json:"region"`
		City    string `json:"city"`
	}
}

// ShortURLPayload is the JSON shape of a short URL in responses.
type ShortURLPayload struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	Visits      int64     `json:"visits"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateURLRequest is the body for shortening a URL.
type CreateURLRequest struct {
	Body struct {
		OriginalURL string `doc:"The URL to shorten"            example:"https://example.com/page" json:"originalUrl"`
		CustomSlug  string `doc:"Optional caller-chosen slug"   json:"customSlug,omitempty"        required:"false"`
	}
}

// CreateURLResponse is the created short URL.
type CreateURLResponse struct {
	Body ShortURLPayload
}

// ListURLsResponse lists the caller's URLs, newest first.
type ListURLsResponse struct {
	Body struct {
		URLs []ShortURLPayload `json:"urls"`
	}
}

// UpdateURLRequest updates a short URL's target and/or slug.
type UpdateURLRequest struct {
	ID   int64 `doc:"Short URL id" path:"id"`
	Body struct {
		OriginalURL string `json:"originalUrl"`
		Slug        string `json:"slug"`
	}
}

// UpdateURLResponse is the updated short URL.
type UpdateURLResponse struct {
	Body ShortURLPayload
}

// DeleteURLRequest removes a short URL.
type DeleteURLRequest struct {
	ID int64 `doc:"Short URL id" path:"id"`
}

// DeleteURLResponse confirms the deletion.
type DeleteURLResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// TrafficRequest asks for daily visit counts.
type TrafficRequest struct {
	ID int64 `doc:"Short URL id" path:"id"`
}

// TrafficResponse is the day-bucketed visit series, ascending by date.
type TrafficResponse struct {
	Body []visits.DayCount
}

// GeoRequest asks for geo-bucketed visit counts.
type GeoRequest struct {
	ID int64 `doc:"Short URL id" path:"id"`
}

// GeoResponse is the location-bucketed visit breakdown.
type GeoResponse struct {
	Body []visits.GeoCount
}

// RedirectRequest resolves a slug.
type RedirectRequest struct {
	Slug string `doc:"The slug to resolve" example:"x7Kp2q" path:"slug"`
}

// RedirectResponse carries the 302 redirect to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}
