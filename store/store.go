// Package store provides durable TokenStore implementations.
//
// The record is always written as a whole value: there is no field-level
// mutation, so "last writer wins" is the only discipline a concurrent
// caller needs.
package store

import (
	"sync"

	console "github.com/sipcha/console-go"
)

// Memory is a process-local TokenStore for tests and ephemeral sessions.
type Memory struct {
	mu  sync.RWMutex
	rec console.StoredSession
}

// compile-time check
var _ console.TokenStore = (*Memory)(nil)

// NewMemory creates an empty in-memory token store.
func NewMemory() *Memory { return &Memory{} }

// Load returns the stored session record.
func (m *Memory) Load() (console.StoredSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec, nil
}

// Save replaces the stored session record.
func (m *Memory) Save(rec console.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

// Clear removes the record, role snapshot included.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = console.StoredSession{}
	return nil
}
