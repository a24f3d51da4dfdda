package graph

import (
	"sync"

	"go.uber.org/zap"

	"github.com/taste-memory-kernel/internal/blob"
)

// Registry owns the per-user store instances. It replaces a hidden
// process-wide cache with an explicit table whose lifetime is tied to
// the host application; tests call Reset between cases.
type Registry struct {
	blobs  blob.Store
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry backed by the given blob store.
func NewRegistry(blobs blob.Store, logger *zap.Logger) *Registry {
	return &Registry{
		blobs:  blobs,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// Get returns the store for a user, creating it (and restoring any
// persisted snapshot) on first access.
func (r *Registry) Get(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[userID]; ok {
		return s
	}
	s := NewStore(userID, r.blobs, r.logger)
	s.Load()
	r.stores[userID] = s
	return s
}

// UserIDs returns the ids of all users with a live store.
func (r *Registry) UserIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.stores))
	for id := range r.stores {
		out = append(out, id)
	}
	return out
}

// PersistAll writes every live store's snapshot. Individual failures
// are logged and do not stop the sweep.
func (r *Registry) PersistAll() {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	for _, s := range stores {
		if err := s.Persist(); err != nil {
			r.logger.Warn("failed to persist user graph",
				zap.String("user", s.UserID()), zap.Error(err))
		}
	}
}

// Reset drops every live store. Persisted snapshots are untouched.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores = make(map[string]*Store)
}
