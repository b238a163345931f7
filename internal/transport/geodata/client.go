// Package geodata is the HTTP client for the geodata vendor: POI search,
// place details, density insights, events, IP geolocation, foot traffic,
// and weather.
package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/metrics"
	"github.com/geopulse-ai/geopulse/internal/transport/httpx"
)

const defaultBaseURL = "https://api.geodata.example.com"

// Config holds the geodata client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	BaseDelay  time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the geodata vendor API. All requests go through the
// retrying httpx client; HTTP 429 is retried there, any other non-2xx
// surfaces immediately as domain.ErrProvider.
type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient creates a geodata client. A missing API key is not checked
// here: it surfaces as domain.ErrMissingCredential on the first call.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    httpx.New(cfg.HTTPClient, "geodata", cfg.MaxRetries, cfg.BaseDelay, logger),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// get issues an authenticated GET and decodes the JSON response into out.
// endpoint labels provider metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("geodata api key is not configured: %w", domain.ErrMissingCredential)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: status %d: %s: %w", endpoint, resp.StatusCode, string(body), domain.ErrProvider)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: decode response: %w", endpoint, domain.ErrMalformedPayload)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	return nil
}

// wirePlace is the vendor's place payload. Lat/lon are pointers: density
// endpoints may return identifier-only entries.
type wirePlace struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"formattedAddress"`
	Category   string   `json:"category"`
	Rating     float64  `json:"rating"`
	Confidence string   `json:"confidence"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (w wirePlace) toDomain() domain.Place {
	p := domain.Place{
		ID:         w.ID,
		Name:       w.Name,
		Address:    w.Address,
		Category:   w.Category,
		Rating:     w.Rating,
		Confidence: w.Confidence,
	}
	if w.Latitude != nil && w.Longitude != nil {
		p.Latitude = *w.Latitude
		p.Longitude = *w.Longitude
		p.HasCoords = true
	}
	return p
}

func placesToDomain(wire []wirePlace) []domain.Place {
	places := make([]domain.Place, 0, len(wire))
	for _, w := range wire {
		places = append(places, w.toDomain())
	}
	return places
}
