// Package session provides the session context object shared by every
// console component.
//
// The Manager is the single owner of the client's belief about its own
// authentication state: token, tenant, and the advisory role snapshot. It
// front-ends a console.TokenStore so the belief survives reloads, and it
// numbers session generations so results of work started before a logout
// can never resurrect a cleared session.
package session

import (
	"fmt"
	"sync"

	console "github.com/sipcha/console-go"
)

// Manager owns the in-memory session state on top of a durable store.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	store console.TokenStore
	cur   console.StoredSession
	gen   uint64
}

// New creates a session manager over the given store. The session starts
// empty; call Rehydrate to pick up a persisted record.
func New(store console.TokenStore) *Manager {
	return &Manager{store: store, gen: 1}
}

// Rehydrate loads the persisted record into memory. It is called once at
// application start and returns the resulting session belief.
func (m *Manager) Rehydrate() (console.Session, error) {
	rec, err := m.store.Load()
	if err != nil {
		return console.Session{}, fmt.Errorf("console/session: rehydrate: %w", err)
	}

	m.mu.Lock()
	m.cur = rec
	m.mu.Unlock()
	return console.Session{Token: rec.Token, Tenant: rec.Tenant}, nil
}

// Login installs a fresh token and the definitive tenant accepted by the
// server, settling any earlier tenant ambiguity. The role snapshot is
// dropped: the new principal's roles are not yet known. The session
// generation advances so identity results fetched for the previous
// principal are discarded on arrival.
func (m *Manager) Login(token, tenant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := console.StoredSession{Token: token, Tenant: tenant}
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("console/session: persist login: %w", err)
	}
	m.cur = rec
	m.gen++
	return nil
}

// Logout clears the token, tenant, and role snapshot everywhere and
// advances the session generation.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("console/session: clear store: %w", err)
	}
	m.cur = console.StoredSession{}
	m.gen++
	return nil
}

// Token returns the current bearer token, if any.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.Token, m.cur.Token != ""
}

// Tenant returns the current tenant slug, empty when none is known.
func (m *Manager) Tenant() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.Tenant
}

// SetTenant persists a tenant slug if none is set yet (first-write-wins).
// A later, different URL value never silently overwrites an established
// tenant; only Login writes a definitive value.
func (m *Manager) SetTenant(slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Tenant != "" || slug == "" {
		return nil
	}
	rec := m.cur
	rec.Tenant = slug
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("console/session: persist tenant: %w", err)
	}
	m.cur = rec
	return nil
}

// RoleSnapshot returns the advisory role snapshot, nil when none exists.
func (m *Manager) RoleSnapshot() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.Roles
}

// SetRoleSnapshot stores the advisory role snapshot alongside the token so
// the next load can render the right menu before the identity fetch
// completes. Without a token there is nothing to annotate: a logout that
// raced the identity fetch must leave the cleared session cleared, so the
// write is dropped.
func (m *Manager) SetRoleSnapshot(roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Token == "" {
		return nil
	}
	rec := m.cur
	rec.Roles = roles
	if err := m.store.Save(rec); err != nil {
		return fmt.Errorf("console/session: persist role snapshot: %w", err)
	}
	m.cur = rec
	return nil
}

// Generation returns the current session generation. It advances on every
// Login and Logout; long-running work captures it at start and discards
// its result when the generation has moved on.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// Session returns the current session belief.
func (m *Manager) Session() console.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return console.Session{Token: m.cur.Token, Tenant: m.cur.Tenant}
}

// Authenticated reports whether a token is present.
func (m *Manager) Authenticated() bool {
	_, ok := m.Token()
	return ok
}
