// Package blob abstracts the file-backed persistence medium used by the
// graph stores and the global wisdom pipeline. Every persisted document
// is a single human-readable JSON blob addressed by a relative path.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the persistence collaborator. Read reports not-found via the
// second return value rather than an error so callers can treat a
// missing blob as an ordinary no-op.
type Store interface {
	Write(path string, data []byte) error
	Read(path string) ([]byte, bool, error)
	Exists(path string) bool
}

// FS is a filesystem-backed Store rooted at a directory. Directories
// are created on demand and writes are atomic (tmp file + rename) so a
// crash mid-write never leaves a truncated snapshot behind.
type FS struct {
	root string
}

// NewFS creates a filesystem store rooted at dir.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FS{root: dir}, nil
}

func (s *FS) resolve(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// Write persists data at path, creating parent directories as needed.
func (s *FS) Write(path string, data []byte) error {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

// Read returns the blob at path. A missing blob is (nil, false, nil).
func (s *FS) Read(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.resolve(path))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob: %w", err)
	}
	return data, true, nil
}

// Exists reports whether a blob is present at path.
func (s *FS) Exists(path string) bool {
	_, err := os.Stat(s.resolve(path))
	return err == nil
}

// Memory is an in-memory Store used by tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[path] = cp
	return nil
}

func (m *Memory) Read(path string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[path]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *Memory) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[path]
	return ok
}
