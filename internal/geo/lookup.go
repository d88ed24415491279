package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Location holds the IP-derived attributes attached to a visit.
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

// ErrUnresolved is returned when the provider cannot locate an IP.
var ErrUnresolved = errors.New("ip could not be resolved")

// Lookup resolves an IP address to a location. Implementations are
// best-effort collaborators: callers must tolerate failure.
type Lookup interface {
	Locate(ctx context.Context, ip string) (*Location, error)
}

// HTTPLookup queries an ip-api style JSON endpoint.
type HTTPLookup struct {
	client   *http.Client
	endpoint string
}

// NewHTTPLookup creates a lookup against the given provider base URL
// (e.g. "http://ip-api.com/json"). The timeout bounds every request.
func NewHTTPLookup(endpoint string, timeout time.Duration) *HTTPLookup {
	return &HTTPLookup{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type providerResponse struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
}

func (l *HTTPLookup) Locate(ctx context.Context, ip string) (*Location, error) {
	if ip == "" {
		return nil, ErrUnresolved
	}

	reqURL := fmt.Sprintf("%s/%s", l.endpoint, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo provider returned %d", resp.StatusCode)
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if body.Status != "success" {
		return nil, ErrUnresolved
	}

	return &Location{
		Country: body.Country,
		Region:  body.RegionName,
		City:    body.City,
	}, nil
}

// Noop is a Lookup that never resolves. Used when no provider is configured.
type Noop struct{}

func (Noop) Locate(context.Context, string) (*Location, error) {
	return nil, ErrUnresolved
}
