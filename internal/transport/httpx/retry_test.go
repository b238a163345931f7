package httpx

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/geopulse-ai/geopulse/internal/domain"
)

// --- Mocks ---

// scriptedTransport serves a fixed sequence of responses or errors and
// counts requests.
type scriptedTransport struct {
	responses []scriptedResponse
	requests  int
	bodies    []string
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	idx := s.requests
	s.requests++

	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		s.bodies = append(s.bodies, string(data))
	}

	if idx >= len(s.responses) {
		return nil, errors.New("no scripted response left")
	}
	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Header:     http.Header{},
	}, nil
}

func newTestClient(transport *scriptedTransport, maxRetries int, base time.Duration) (*Client, *[]time.Duration) {
	c := New(&http.Client{Transport: transport}, "test", maxRetries, base, nil)
	slept := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return c, slept
}

// --- Tests ---

func TestDo_RateLimitedThenSuccess(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, body: "slow down"},
		{status: 429, body: "slow down"},
		{status: 429, body: "slow down"},
		{status: 200, body: "ok"},
	}}
	c, slept := newTestClient(transport, 3, 100*time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, "http://provider.test/v1/search", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if transport.requests != 4 {
		t.Errorf("expected 4 requests, got %d", transport.requests)
	}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(*slept))
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestDo_ExhaustedRetries(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, body: "limit"},
		{status: 429, body: "limit"},
		{status: 429, body: "limit"},
		{status: 429, body: "last body"},
	}}
	c, _ := newTestClient(transport, 3, time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, "http://provider.test/v1/search", nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %T", err)
	}
	if rle.Status != 429 {
		t.Errorf("expected status 429, got %d", rle.Status)
	}
	if rle.Body != "last body" {
		t.Errorf("expected last observed body, got %q", rle.Body)
	}
	if transport.requests != 4 {
		t.Errorf("expected 4 requests, got %d", transport.requests)
	}
}

func TestDo_NonRateLimitErrorNotRetried(t *testing.T) {
	for _, status := range []int{400, 404, 500, 503} {
		transport := &scriptedTransport{responses: []scriptedResponse{
			{status: status, body: "failure"},
		}}
		c, slept := newTestClient(transport, 3, time.Millisecond)

		req, _ := http.NewRequest(http.MethodGet, "http://provider.test/v1/search", nil)
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		resp.Body.Close()

		if resp.StatusCode != status {
			t.Errorf("expected status %d passed through, got %d", status, resp.StatusCode)
		}
		if transport.requests != 1 {
			t.Errorf("status %d: expected 1 request, got %d", status, transport.requests)
		}
		if len(*slept) != 0 {
			t.Errorf("status %d: expected no backoff, got %v", status, *slept)
		}
	}
}

func TestDo_NetworkErrorRetried(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{err: errors.New("connection reset")},
		{status: 200, body: "ok"},
	}}
	c, slept := newTestClient(transport, 3, 50*time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, "http://provider.test/v1/search", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if transport.requests != 2 {
		t.Errorf("expected 2 requests, got %d", transport.requests)
	}
	if len(*slept) != 1 || (*slept)[0] != 50*time.Millisecond {
		t.Errorf("expected one base-delay sleep, got %v", *slept)
	}
}

func TestDo_NetworkErrorExhausted(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{err: errors.New("dial timeout")},
		{err: errors.New("dial timeout")},
		{err: errors.New("dial timeout")},
	}}
	c, _ := newTestClient(transport, 2, time.Millisecond)

	req, _ := http.NewRequest(http.MethodGet, "http://provider.test/v1/search", nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Error("network failure must not map to ErrRateLimited")
	}
	if transport.requests != 3 {
		t.Errorf("expected 3 requests, got %d", transport.requests)
	}
}

func TestDo_BodyReplayedOnRetry(t *testing.T) {
	transport := &scriptedTransport{responses: []scriptedResponse{
		{status: 429, body: "limit"},
		{status: 200, body: "ok"},
	}}
	c, _ := newTestClient(transport, 3, time.Millisecond)

	req, _ := http.NewRequest(http.MethodPost, "http://provider.test/v1/search", strings.NewReader(`{"q":"cafe"}`))
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(transport.bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(transport.bodies))
	}
	for i, body := range transport.bodies {
		if body != `{"q":"cafe"}` {
			t.Errorf("attempt %d: body not replayed, got %q", i, body)
		}
	}
}
