package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	console "github.com/sipcha/console-go"
)

// File is a TokenStore backed by a single JSON file, so the session
// survives process restarts. Writes go through a temp file and rename so
// a crash never leaves a half-written record.
type File struct {
	mu   sync.Mutex
	path string
}

// compile-time check
var _ console.TokenStore = (*File)(nil)

// NewFile creates a file-backed token store at path. The parent directory
// is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load returns the stored session record, zero-valued when the file does
// not exist yet.
func (f *File) Load() (console.StoredSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rec console.StoredSession
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("console/store: read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return console.StoredSession{}, fmt.Errorf("console/store: parse %s: %w", f.path, err)
	}
	return rec, nil
}

// Save replaces the stored session record.
func (f *File) Save(rec console.StoredSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("console/store: create dir: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("console/store: encode record: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("console/store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("console/store: replace %s: %w", f.path, err)
	}
	return nil
}

// Clear removes the record file entirely. A missing file is not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("console/store: remove %s: %w", f.path, err)
	}
	return nil
}
