package console

import "context"

// TokenStore owns the session record in durable storage.
// Implementations: store/ (in-memory and JSON file), fake/ (testing).
// All writes are whole-value replacements; Clear removes the token, the
// tenant and the cached role snapshot in one step.
type TokenStore interface {
	// Load returns the stored session record, zero-valued when empty.
	Load() (StoredSession, error)

	// Save replaces the stored session record.
	Save(rec StoredSession) error

	// Clear removes the record entirely, role snapshot included.
	Clear() error
}

// AuthService performs interactive logins against the backend.
// A successful login persists the token and the definitive tenant.
type AuthService interface {
	// Login authenticates with username and password, scoped to a tenant.
	Login(ctx context.Context, tenantSlug, username, password string) (Session, error)

	// RequestCode triggers out-of-band delivery of a one-time code.
	RequestCode(ctx context.Context, to string) error

	// VerifyCode exchanges a delivered code for a session.
	VerifyCode(ctx context.Context, to, code string) (Session, error)
}

// IdentityService resolves the current principal from the backend and
// tracks the best-known role set for rendering decisions.
type IdentityService interface {
	// Current returns the authoritative identity, fetching it if needed.
	Current(ctx context.Context) (*Identity, error)

	// Roles returns the best-known role set: the authoritative one when
	// resolved, otherwise the advisory snapshot.
	Roles() []string

	// Resolved reports whether the authoritative fetch has completed for
	// the current session generation.
	Resolved() bool
}

// SessionGuard decides whether a navigation request may proceed or must
// be redirected to the login screen.
type SessionGuard interface {
	Check(req NavigationRequest) Decision
}

// Navigator computes the role-gated route set and the default landing
// route. It is a rendering convenience only; the backend independently
// rejects operations the caller's role does not permit.
type Navigator interface {
	// Routes returns the screens visible to the current role set, nil
	// while role resolution is still pending.
	Routes() []Route

	// Landing returns the route the root path resolves to.
	Landing() string

	// Visible reports whether a route is in the current menu.
	Visible(path string) bool

	// Pending reports whether role resolution is still in flight, in
	// which case callers render a neutral loading state.
	Pending() bool
}

// AdminUserService is the operator-identity provisioning client.
type AdminUserService interface {
	// List returns all operator identities for the tenant, sorted by
	// username.
	List(ctx context.Context) ([]AdminUser, error)

	// Create provisions a new operator identity. Phone, when supplied,
	// is validated locally against E.164 before any network call.
	Create(ctx context.Context, u NewAdminUser) (*AdminUser, error)
}

// NumberService lists the tenant's provisioned phone numbers.
type NumberService interface {
	List(ctx context.Context) ([]Number, error)
}

// SIPDomainService lists the tenant's provisioned SIP domains.
type SIPDomainService interface {
	List(ctx context.Context) ([]SIPDomain, error)
}
