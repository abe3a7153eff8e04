package devto

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://dev.to/api"
	DefaultTimeout = 60 * time.Second

	// APIKeyHeader carries the stored secret on every request
	APIKeyHeader    = "api-key"
	RequestIDHeader = "X-Request-Id"
)

// KeySource supplies the API key for each request
type KeySource interface {
	Obtain() (string, error)
}

// Client represents a dev.to API client
type Client struct {
	BaseURL   string
	Keys      KeySource
	UserAgent string
	Logger    *slog.Logger

	// HTTPClient, when set, is shared across calls and never closed by the client.
	// When nil, every call uses a fresh client that is closed once the call completes.
	HTTPClient *http.Client
	// Timeout applies to the per-call clients created when HTTPClient is nil
	Timeout time.Duration
}

// Response is the raw result of a request; interpreting it is the caller's job
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// APIError is returned when the API answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// NewClient creates a new dev.to API client
func NewClient(baseURL string, keys KeySource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		Keys:      keys,
		UserAgent: "devtoy-cli/1.0",
		Timeout:   DefaultTimeout,
	}
}

// Do performs an authenticated request against BaseURL+path
func (c *Client) Do(ctx context.Context, method, path string, params url.Values) (*Response, error) {
	key, err := c.Keys.Obtain()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain api key: %w", err)
	}

	target := c.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(APIKeyHeader, key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		// A private transport keeps the per-call pool apart from any shared client.
		transport := http.DefaultTransport.(*http.Transport).Clone()
		defer transport.CloseIdleConnections()
		httpClient = &http.Client{Timeout: c.Timeout, Transport: transport}
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger().Debug("api request",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
