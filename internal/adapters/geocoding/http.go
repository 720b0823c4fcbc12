package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"member-locator-service/internal/platform/obs"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultBackoff   = 200 * time.Millisecond
	defaultUserAgent = "member-locator-service/1.0"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Option tweaks a provider client.
type Option func(*httpClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.session = c }
}

// WithUserAgent sets the User-Agent header sent upstream.
// Nominatim rejects requests without an identifying agent.
func WithUserAgent(ua string) Option {
	return func(h *httpClient) {
		if strings.TrimSpace(ua) != "" {
			h.userAgent = ua
		}
	}
}

// WithBackoff sets the initial retry delay.
func WithBackoff(d time.Duration) Option {
	return func(h *httpClient) { h.backoff = d }
}

// httpClient is the shared transport for the geocoding providers.
// It is safe for concurrent use.
type httpClient struct {
	session   *http.Client
	baseURL   string
	userAgent string
	backoff   time.Duration
	provider  string
}

func newHTTPClient(provider, baseURL string, opts []Option) httpClient {
	h := httpClient{
		session:   &http.Client{Timeout: defaultTimeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		backoff:   defaultBackoff,
		provider:  provider,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h *httpClient) newRequest(
	ctx context.Context,
	endpoint string,
	query url.Values,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)

	return req, nil
}

func (h *httpClient) do(req *http.Request) (*http.Response, error) {
	resp, err := h.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx responses)
// using exponential backoff while respecting context cancellation.
func (h *httpClient) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	const maxAttempts = 4
	backoff := h.backoff

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := h.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// getJSON issues a GET with retries and decodes the body into out.
func (h *httpClient) getJSON(ctx context.Context, endpoint string, query url.Values, out any) (err error) {
	defer obs.Time(ctx, h.provider+".get")(&err)

	start := time.Now()
	defer func() {
		obs.GeocodeDuration.WithLabelValues(h.provider).Observe(time.Since(start).Seconds())
	}()

	resp, err := h.doWithRetry(ctx, func() (*http.Request, error) {
		return h.newRequest(ctx, endpoint, query)
	})
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", h.provider, err)
	}

	return nil
}

// statusCode extracts the upstream HTTP status from err, or 0.
func statusCode(err error) int {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}
