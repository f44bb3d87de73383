// Package geocode resolves free-form location strings to coordinates via the
// Census Geocoder one-line API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client resolves a location string to latitude/longitude.
type Client interface {
	// Locate geocodes a single free-form location string. An unmatched
	// location returns a Result with Matched false, not an error.
	Locate(ctx context.Context, location string) (*Result, error)
}

// Result holds the geocoding output for a location.
type Result struct {
	Latitude  float64
	Longitude float64
	Matched   bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the Census Geocoder endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		g.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for Census API calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a new geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    censusOneLineURL,
		limiter:    rate.NewLimiter(50, 50), // Census default: 50 req/s
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
