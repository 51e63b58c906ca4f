// Package guard makes the navigation-level session decision: render the
// requested screen or bounce to the login screen.
//
// The session moves through three states. Unauthenticated: no token.
// Resolving: a token exists but the identity fetch has not completed.
// Authenticated: token present and identity resolved (or its failure
// handled). Resolving is never treated as Unauthenticated, so an
// in-flight fetch cannot cause a redirect loop. Expiry is discovered
// reactively when a backend call is rejected; the guard does not poll.
package guard

import (
	"log/slog"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/audit"
	"github.com/sipcha/console-go/metrics"
)

// State is the session guard state.
type State int

const (
	Unauthenticated State = iota
	Resolving
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Event is a session lifecycle occurrence.
type Event int

const (
	// EventTokenFound fires when a token appears: login completed, or a
	// persisted token was found at load.
	EventTokenFound Event = iota

	// EventResolved fires when the identity fetch finishes, successfully
	// or as a handled failure.
	EventResolved

	// EventLogout fires on explicit logout.
	EventLogout

	// EventTokenMissing fires when a guard-time check finds no token.
	EventTokenMissing
)

// Next is the pure transition function. Every reachable transition is a
// function of (previous state, event) and nothing else.
func Next(s State, e Event) State {
	switch e {
	case EventTokenFound:
		if s == Unauthenticated {
			return Resolving
		}
		return s
	case EventResolved:
		if s == Resolving {
			return Authenticated
		}
		return s
	case EventLogout, EventTokenMissing:
		return Unauthenticated
	default:
		return s
	}
}

// DefaultLoginPath is where unauthenticated navigation is redirected.
const DefaultLoginPath = "/login"

// SessionState is the slice of session.Manager the guard reads.
type SessionState interface {
	Authenticated() bool
}

// ResolutionState is the slice of the identity resolver the guard reads.
type ResolutionState interface {
	Resolved() bool
}

// Guard implements console.SessionGuard.
type Guard struct {
	sessions  SessionState
	identity  ResolutionState
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     *audit.Logger
	loginPath string
	public    map[string]bool
}

// compile-time check
var _ console.SessionGuard = (*Guard)(nil)

// Option configures the Guard.
type Option func(*Guard)

// WithLoginPath overrides the login route.
func WithLoginPath(path string) Option {
	return func(g *Guard) { g.loginPath = path }
}

// WithPublicPaths marks additional routes that never require a session.
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		for _, p := range paths {
			g.public[p] = true
		}
	}
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// WithMetrics records guard decisions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// WithAudit emits an audit event for every blocked navigation.
func WithAudit(a *audit.Logger) Option {
	return func(g *Guard) { g.audit = a }
}

// New creates a session guard over the session and resolution state.
func New(sessions SessionState, identity ResolutionState, opts ...Option) *Guard {
	g := &Guard{
		sessions:  sessions,
		identity:  identity,
		logger:    slog.Default(),
		metrics:   metrics.New(false),
		loginPath: DefaultLoginPath,
		public:    make(map[string]bool),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// State derives the current guard state from the session and the
// resolution progress. One derivation per render pass sees a consistent
// snapshot.
func (g *Guard) State() State {
	if !g.sessions.Authenticated() {
		return Unauthenticated
	}
	if !g.identity.Resolved() {
		return Resolving
	}
	return Authenticated
}

// Check guards a navigation request. A protected route without a token
// redirects to the login route with the original query string appended,
// so the tenant parameter survives the bounce.
func (g *Guard) Check(req console.NavigationRequest) console.Decision {
	if req.Path == g.loginPath || g.public[req.Path] {
		return console.Decision{Allow: true}
	}

	if g.State() == Unauthenticated {
		target := g.loginPath
		if req.RawQuery != "" {
			target += "?" + req.RawQuery
		}
		g.logger.Debug("redirecting unauthenticated navigation",
			"path", req.Path, "target", target)
		g.metrics.GuardDecision("redirect")
		if g.audit != nil {
			g.audit.Log(audit.Event{
				Action: audit.ActionGuardRedirect, Path: req.Path,
				Result: audit.ResultBlocked, Details: target,
			})
		}
		return console.Decision{RedirectTo: target}
	}

	g.metrics.GuardDecision("allow")
	return console.Decision{Allow: true}
}

// LoginPath returns the configured login route.
func (g *Guard) LoginPath() string { return g.loginPath }
