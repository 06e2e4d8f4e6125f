// Package httpclient provides the outbound HTTP client shared by source
// adapters: User-Agent, optional proxy, per-request timeout, and status
// classification into the platform error taxonomy. Retry policy and request
// budgets live outside the client (retry.Executor, quota.Keeper) so it never
// hides an extra attempt from the audit trail.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the request timeout duration. Default: 30 seconds.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string

	// ProxyURL routes requests through an HTTP(S) proxy when non-empty.
	ProxyURL string
}

// Client is a thin wrapper over http.Client with structured request logging.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     logx.Logger
}

// New creates a new HTTP client. Returns an error on an unparseable proxy URL;
// a broken proxy is a configuration fault, not something to fall through.
func New(cfg Config, logger logx.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Stalker-Recon/1.0"
	}
	if logger == nil {
		logger = logx.New()
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid proxy URL %q", cfg.ProxyURL)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		userAgent: cfg.UserAgent,
		logger:    logger.With("component", "httpclient"),
	}, nil
}

// Get performs a GET request with the configured User-Agent plus any
// caller-supplied headers, and returns the raw response.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", rawURL)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Warn("HTTP request failed",
			"url", rawURL,
			"duration_ms", elapsed.Milliseconds(),
			"error", err.Error(),
		)
		return nil, errors.Wrapf(errors.ErrConnectionFailed, "GET %s: %v", rawURL, err)
	}

	c.logger.Debug("HTTP response",
		"url", rawURL,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)

	return resp, nil
}

// FetchJSON performs a GET expecting a JSON body. The status code is
// classified through CheckStatus and the body returned on 2xx.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	merged := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}

	resp, err := c.Get(ctx, rawURL, merged)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return body, nil
}

// CheckStatus maps an HTTP status onto the platform error taxonomy. A 429
// yields a RetryAfterError carrying the server's Retry-After hint so callers
// can suspend the service for exactly as long as asked.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &errors.RetryAfterError{After: parseRetryAfter(resp)}
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrapf(errors.ErrUnauthorized, "HTTP %d", resp.StatusCode)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return errors.Wrapf(errors.ErrServiceUnavailable, "HTTP %d", resp.StatusCode)
	default:
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
}

// parseRetryAfter reads the Retry-After header in seconds (0 when absent or
// malformed; the quota layer applies its own default).
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
