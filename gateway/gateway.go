// Package gateway is the single choke point for every outbound call to
// the console backend.
//
// It resolves the base endpoint, attaches the current bearer token to
// every request through a RoundTripper hook, and maps non-2xx responses
// to typed errors. It never retries and never redirects on authorization
// failure; each caller decides whether a 401 is fatal or degrades to an
// empty result.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// BuildEndpoint is the build-time endpoint override:
//
//	go build -ldflags "-X github.com/sipcha/console-go/gateway.BuildEndpoint=https://api.example.com"
var BuildEndpoint string

// EnvEndpoint is the runtime endpoint override.
const EnvEndpoint = "SIPCHA_API_URL"

// DefaultPath is the same-origin relative path assumed behind a reverse
// proxy when nothing else is configured.
const DefaultPath = "/api"

// ResolveEndpoint picks the backend base URL. First match wins: the
// explicit configuration value, the build-time override, the environment
// variable, then origin + "/api". The same binary can therefore run
// against a local backend, staging, or behind a production proxy without
// a rebuild.
func ResolveEndpoint(explicit, origin string) string {
	if explicit != "" {
		return strings.TrimRight(explicit, "/")
	}
	if BuildEndpoint != "" {
		return strings.TrimRight(BuildEndpoint, "/")
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		return strings.TrimRight(v, "/")
	}
	return strings.TrimRight(origin, "/") + DefaultPath
}

// TokenSource supplies the current bearer token, when one exists.
// *session.Manager satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client wraps outbound HTTP calls to the console backend.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Its transport is still
// wrapped with the bearer hook.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets a structured logger for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds every request issued by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a gateway client for the given base endpoint. Every request
// passes through the bearer hook: when tokens yields a token it is
// attached as an Authorization header, otherwise the request goes out
// unauthenticated (login and code-request endpoints are public).
func New(endpoint string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(endpoint, "/"),
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}

	next := c.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	if c.timeout == 0 {
		c.timeout = c.http.Timeout
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	// Copy the client so a caller-supplied http.Client is never mutated,
	// whatever order the options arrived in.
	c.http = &http.Client{
		Timeout:   c.timeout,
		Transport: &bearerTransport{next: next, tokens: tokens},
	}
	return c
}

// Endpoint returns the resolved base URL.
func (c *Client) Endpoint() string { return c.base }

// bearerTransport is the request interception hook.
type bearerTransport struct {
	next   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens != nil {
		if tok, ok := t.tokens.Token(); ok {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return t.next.RoundTrip(req)
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
// Both in and out may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("console/gateway: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("console/gateway: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("console/gateway: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("console/gateway: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := newStatusError(resp.StatusCode, data)
		c.logger.Debug("backend rejected request",
			"method", method, "path", path, "status", resp.StatusCode)
		return serr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("console/gateway: decode response: %w", err)
		}
	}
	return nil
}
