// Package activityclient is a client for the activities backend REST API.
//
// The backend exposes three endpoints:
//
//   - GET /activities returns every activity keyed by name
//   - POST /activities/{name}/signup?email={email} adds a participant
//   - DELETE /activities/{name}/participants?email={email} removes one
//
// Mutations answer {"message": "..."} on success and {"detail": "..."} on
// failure. Failures come back as *APIError so callers can show the detail.
//
// Example usage:
//
//	client, err := activityclient.New("http://localhost:8000")
//	activities, err := client.List(ctx)
//	msg, err := client.Signup(ctx, "Chess Club", "a@mergington.edu")
package activityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nomis52/activityboard/activity"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "activityboard"
	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 4 << 20
)

// Client talks to the activities backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is never modified, whatever
// the option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the backend at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the current activities. The request always bypasses caches.
func (c *Client) List(ctx context.Context) (activity.Collection, error) {
	var collection activity.Collection
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/activities")
	if err != nil {
		return collection, err
	}
	if err := json.Unmarshal(body, &collection); err != nil {
		return collection, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return collection, nil
}

// Signup adds email to the named activity and returns the server message.
func (c *Client) Signup(ctx context.Context, activityName, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, activityURL(c.baseURL, activityName, "signup", email))
}

// Remove takes email off the named activity and returns the server message.
func (c *Client) Remove(ctx context.Context, activityName, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, activityURL(c.baseURL, activityName, "participants", email))
}

func (c *Client) mutate(ctx context.Context, method, u string) (string, error) {
	body, err := c.do(ctx, method, u)
	if err != nil {
		return "", err
	}
	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Message, nil
}

// do sends the request and returns the body of a 2xx response.
// Any other status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("backend request",
		"method", method,
		"path", req.URL.EscapedPath(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode/100 != 2 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// activityURL builds /activities/{name}/{action}?email={email} with both
// values escaped the way encodeURIComponent does.
func activityURL(base, name, action, email string) string {
	return fmt.Sprintf("%s/activities/%s/%s?email=%s",
		base, url.PathEscape(name), action, encodeComponent(email))
}

// encodeComponent escapes s for a query value, encoding spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// IsAPIError reports whether err carries a backend error response.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
