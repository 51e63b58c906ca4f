// Package console provides the client-side session, tenant-scoping, and
// role-gated navigation core of the SIPCHA admin console.
//
// The package defines interfaces for token storage, login, identity
// resolution, navigation guarding, and the CRUD collaborators the core
// gates. Concrete implementations are injected via Option functions, so
// the same Client runs against a live backend (cmd/sipchactl), an
// in-memory one (fake/), or any mix in tests.
//
// Example usage with the in-memory backend:
//
//	c := fake.NewClient(
//	    fake.WithTenant("acme", "Acme Telephony"),
//	    fake.WithAdmin("acme", "alice", "s3cret", []string{"admin"}),
//	)
//	sess, err := c.Auth().Login(ctx, "acme", "alice", "s3cret")
package console

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Client is the main entry point for console operations.
// Service implementations are injected via Option functions.
type Client struct {
	config    Config
	logger    *slog.Logger
	store     TokenStore
	auth      AuthService
	identity  IdentityService
	guard     SessionGuard
	navigator Navigator
	admins    AdminUserService
	numbers   NumberService
	domains   SIPDomainService
}

// Config holds connection and behavior configuration.
type Config struct {
	// Endpoint is the base URL of the console backend. When empty, the
	// gateway falls back to the build-time override, then the
	// SIPCHA_API_URL environment variable, then the same-origin /api
	// path behind a reverse proxy.
	Endpoint string

	// RequestTimeout bounds every outbound call. Default: 10 seconds.
	RequestTimeout time.Duration
}

// DefaultRequestTimeout is applied when Config.RequestTimeout is zero.
const DefaultRequestTimeout = 10 * time.Second

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTokenStore sets the durable session storage implementation.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// WithAuthService sets the login implementation.
func WithAuthService(a AuthService) Option {
	return func(c *Client) { c.auth = a }
}

// WithIdentityService sets the identity resolution implementation.
func WithIdentityService(i IdentityService) Option {
	return func(c *Client) { c.identity = i }
}

// WithSessionGuard sets the navigation guard implementation.
func WithSessionGuard(g SessionGuard) Option {
	return func(c *Client) { c.guard = g }
}

// WithNavigator sets the role-gated navigation implementation.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithAdminUserService sets the operator provisioning client.
func WithAdminUserService(a AdminUserService) Option {
	return func(c *Client) { c.admins = a }
}

// WithNumberService sets the phone number list client.
func WithNumberService(n NumberService) Option {
	return func(c *Client) { c.numbers = n }
}

// WithSIPDomainService sets the SIP domain list client.
func WithSIPDomainService(d SIPDomainService) Option {
	return func(c *Client) { c.domains = d }
}

// NewClient creates a new console client with the given configuration and
// options. A token store is the one hard requirement: every other service
// is optional, but nothing can run without session storage.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	c := &Client{config: cfg, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	if c.store == nil {
		return nil, fmt.Errorf("console: a TokenStore is required")
	}
	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Store returns the token store.
func (c *Client) Store() TokenStore { return c.store }

// Auth returns the login service, or nil if not configured.
func (c *Client) Auth() AuthService { return c.auth }

// Identity returns the identity resolver, or nil if not configured.
func (c *Client) Identity() IdentityService { return c.identity }

// Guard returns the session guard, or nil if not configured.
func (c *Client) Guard() SessionGuard { return c.guard }

// Navigator returns the role-gated navigator, or nil if not configured.
func (c *Client) Navigator() Navigator { return c.navigator }

// Admins returns the operator provisioning client, or nil if not configured.
func (c *Client) Admins() AdminUserService { return c.admins }

// Numbers returns the phone number client, or nil if not configured.
func (c *Client) Numbers() NumberService { return c.numbers }

// Domains returns the SIP domain client, or nil if not configured.
func (c *Client) Domains() SIPDomainService { return c.domains }

// Session reads the current session record from the token store.
func (c *Client) Session() (Session, error) {
	rec, err := c.store.Load()
	if err != nil {
		return Session{}, fmt.Errorf("console: load session: %w", err)
	}
	return Session{Token: rec.Token, Tenant: rec.Tenant}, nil
}

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{
		c.store, c.auth, c.identity,
		c.guard, c.navigator, c.admins, c.numbers, c.domains,
	}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
