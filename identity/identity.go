// Package identity bridges the gap between "a token exists" and "we know
// who, and with what privileges".
//
// The resolver issues one authenticated who-am-i call per application
// load, collapsed through singleflight so unrelated re-renders never
// trigger re-resolution. The resolved role set is kept in memory for the
// current render tree and written to the session record as an advisory
// snapshot for the next load. A result that arrives after the session
// generation has moved on (logout, new login) is discarded: it must not
// resurrect a cleared session.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/audit"
	"github.com/sipcha/console-go/gateway"
	"github.com/sipcha/console-go/metrics"
)

// ErrNoSession is returned when resolution is requested without a token.
var ErrNoSession = errors.New("console/identity: no session token")

// ErrSessionChanged is returned when the session was logged out or
// replaced while the fetch was in flight.
var ErrSessionChanged = errors.New("console/identity: session changed during resolution")

// Backend issues the authenticated who-am-i call.
// Implementations: REST (this package), fake/ (testing).
type Backend interface {
	Me(ctx context.Context) (*console.Identity, error)
}

// SessionState is the slice of session.Manager the resolver depends on.
type SessionState interface {
	Authenticated() bool
	Generation() uint64
	RoleSnapshot() []string
	SetRoleSnapshot(roles []string) error
}

// Resolver implements console.IdentityService.
type Resolver struct {
	backend  Backend
	sessions SessionState
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Logger

	sf singleflight.Group

	mu       sync.RWMutex
	current  *console.Identity
	resolved bool
	gen      uint64 // session generation the cached identity belongs to
}

// compile-time check
var _ console.IdentityService = (*Resolver)(nil)

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics records resolution outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithAudit emits an audit event per resolution outcome.
func WithAudit(a *audit.Logger) Option {
	return func(r *Resolver) { r.audit = a }
}

// New creates an identity resolver over the given backend and session
// state.
func New(backend Backend, sessions SessionState, opts ...Option) *Resolver {
	r := &Resolver{
		backend:  backend,
		sessions: sessions,
		logger:   slog.Default(),
		metrics:  metrics.New(false),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Current returns the authoritative identity for the current session,
// fetching it once per session generation. A backend failure degrades to
// an identity with an empty role set rather than an error: the navigation
// layer must still render a logout-capable shell.
func (r *Resolver) Current(ctx context.Context) (*console.Identity, error) {
	if !r.sessions.Authenticated() {
		return nil, ErrNoSession
	}

	r.mu.RLock()
	if r.resolved && r.gen == r.sessions.Generation() {
		id := r.current
		r.mu.RUnlock()
		return id, nil
	}
	r.mu.RUnlock()

	// singleflight keeps it to one resolution attempt per load
	v, err, _ := r.sf.Do("me", func() (interface{}, error) {
		return r.resolve(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*console.Identity), nil
}

func (r *Resolver) resolve(ctx context.Context) (*console.Identity, error) {
	gen := r.sessions.Generation()
	start := time.Now()

	id, err := r.backend.Me(ctx)
	if err != nil {
		// Unknown role, not a crash: the caller renders a shell with an
		// empty role set and the backend remains the data authority.
		r.logger.Warn("identity resolution failed", "error", err)
		r.metrics.IdentityResolution("failed", time.Since(start))
		r.logEvent(audit.Event{
			Action: audit.ActionIdentityResolve,
			Result: audit.ResultFailure, Error: err.Error(),
		})
		id = &console.Identity{}
	} else {
		r.metrics.IdentityResolution("resolved", time.Since(start))
		r.logEvent(audit.Event{
			Action: audit.ActionIdentityResolve, Username: id.Username,
			Result: audit.ResultSuccess,
		})
	}

	if r.sessions.Generation() != gen {
		// Logged out (or re-logged-in) while the fetch was in flight.
		r.metrics.StaleResultDropped()
		return nil, ErrSessionChanged
	}

	r.mu.Lock()
	r.current = id
	r.resolved = true
	r.gen = gen
	r.mu.Unlock()

	if err == nil {
		if serr := r.sessions.SetRoleSnapshot(id.Roles); serr != nil {
			r.logger.Warn("role snapshot not persisted", "error", serr)
		}
	}
	return id, nil
}

func (r *Resolver) logEvent(e audit.Event) {
	if r.audit != nil {
		r.audit.Log(e)
	}
}

// Roles returns the best-known role set: the authoritative one once
// resolved for the current generation, otherwise the advisory snapshot
// from the last load. The snapshot gates rendering only; data access is
// always re-checked by the backend.
func (r *Resolver) Roles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.resolved && r.gen == r.sessions.Generation() {
		return r.current.Roles
	}
	return r.sessions.RoleSnapshot()
}

// Resolved reports whether the authoritative fetch completed for the
// current session generation.
func (r *Resolver) Resolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved && r.gen == r.sessions.Generation()
}

// RESTBackend implements Backend over the API gateway.
type RESTBackend struct {
	gw *gateway.Client
}

// compile-time check
var _ Backend = (*RESTBackend)(nil)

// NewRESTBackend creates the production who-am-i backend.
func NewRESTBackend(gw *gateway.Client) *RESTBackend {
	return &RESTBackend{gw: gw}
}

type meResponse struct {
	Username          string   `json:"username"`
	Roles             []string `json:"roles"`
	TenantDisplayName string   `json:"tenantDisplayName"`
}

// Me fetches the caller's identity from GET /me.
func (b *RESTBackend) Me(ctx context.Context) (*console.Identity, error) {
	var resp meResponse
	if err := b.gw.Get(ctx, "/me", &resp); err != nil {
		return nil, fmt.Errorf("console/identity: %w", err)
	}
	return &console.Identity{
		Username:          resp.Username,
		Roles:             resp.Roles,
		TenantDisplayName: resp.TenantDisplayName,
	}, nil
}
