// Package httpx wraps outbound HTTP calls to rate-limited providers with
// bounded exponential backoff.
package httpx

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/domain"
	"github.com/geopulse-ai/geopulse/internal/metrics"
)

const maxErrorBodyBytes = 2048

// RateLimitError is the terminal error after retry exhaustion on HTTP 429.
// It carries the last observed status and body.
type RateLimitError struct {
	Status int
	Body   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after retries: status %d: %s", e.Status, e.Body)
}

func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

// Client retries HTTP 429 responses and network-level failures with
// delay = baseDelay * 2^attempt, no jitter. Any other response, success or
// failure, is returned to the caller immediately.
type Client struct {
	base       *http.Client
	name       string
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// New creates a retrying client. name labels retry metrics. base may be nil,
// in which case http.DefaultClient is used.
func New(base *http.Client, name string, maxRetries int, baseDelay time.Duration, logger *zap.Logger) *Client {
	if base == nil {
		base = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:       base,
		name:       name,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Do issues the request, retrying on 429 and transport errors up to
// maxRetries times. Requests with a body must have GetBody set so the body
// can be replayed; http.NewRequest does this for common body types.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		return nil, fmt.Errorf("httpx: request body is not replayable")
	}

	var (
		lastStatus int
		lastBody   string
		lastErr    error
	)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			c.logger.Debug("Retrying provider request",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			metrics.ProviderRetriesTotal.WithLabelValues(c.name).Inc()
			c.sleep(delay)
		}

		attemptReq := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("httpx: replay request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := c.base.Do(attemptReq)
		if err != nil {
			// Network-level failure: retry.
			lastErr = err
			lastStatus = 0
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		lastStatus = resp.StatusCode
		lastBody = readBounded(resp.Body)
		_ = resp.Body.Close()
		lastErr = nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("httpx: request failed after %d retries: %w", c.maxRetries, lastErr)
	}
	return nil, &RateLimitError{Status: lastStatus, Body: lastBody}
}

func readBounded(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return string(data)
}
