// Package tenant establishes which tenant a login attempt targets.
//
// The tenant arrives on the navigation URL the first time a user follows
// an invitation link; after that it lives in the session record. The URL
// never overrides an established value: first write wins, and only a
// successful login settles the slug definitively.
package tenant

import (
	"errors"
	"fmt"
	"net/url"
)

// Param is the canonical query parameter carrying the tenant slug.
const Param = "company"

// ErrNoTenant is returned when no tenant can be determined. Login must be
// blocked locally on this error: a login request without tenant scoping
// is meaningless to the backend and must not be sent.
var ErrNoTenant = errors.New("console/tenant: no tenant selected; append ?" + Param + "=<slug> to the URL")

// Sink is the persisted tenant state. *session.Manager satisfies it.
type Sink interface {
	Tenant() string
	SetTenant(slug string) error
}

// FromURL extracts the tenant parameter from a navigation URL. It returns
// an empty string when the URL is unparseable or carries no parameter.
func FromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(Param)
}

// FromQuery extracts the tenant parameter from a raw query string.
func FromQuery(rawQuery string) string {
	vals, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	return vals.Get(Param)
}

// Resolver determines the active tenant on page load.
type Resolver struct {
	sessions Sink
}

// New creates a tenant resolver over the session state.
func New(sessions Sink) *Resolver {
	return &Resolver{sessions: sessions}
}

// Resolve determines the active tenant for the given navigation URL.
// A persisted tenant wins, so deep links and reloads work without the
// parameter. When only the URL supplies a value it is persisted,
// bootstrapping a first visit via a shared invitation link. An empty
// result means no tenant could be determined.
func (r *Resolver) Resolve(rawURL string) (string, error) {
	if cur := r.sessions.Tenant(); cur != "" {
		return cur, nil
	}
	slug := FromURL(rawURL)
	if slug == "" {
		return "", nil
	}
	if err := r.sessions.SetTenant(slug); err != nil {
		return "", fmt.Errorf("console/tenant: persist %q: %w", slug, err)
	}
	return slug, nil
}

// Require resolves the tenant and fails with ErrNoTenant when none can be
// determined. The login screen calls this before any network I/O.
func (r *Resolver) Require(rawURL string) (string, error) {
	slug, err := r.Resolve(rawURL)
	if err != nil {
		return "", err
	}
	if slug == "" {
		return "", ErrNoTenant
	}
	return slug, nil
}
