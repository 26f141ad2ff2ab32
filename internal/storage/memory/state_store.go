package memory

import (
	"context"
	"sync"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// StateStore is an in-memory implementation of storage.StateStore.
type StateStore struct {
	mu    sync.RWMutex
	state *domain.State
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Load retrieves the root record. Returns ErrNotFound if never saved.
func (s *StateStore) Load(_ context.Context) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, storage.ErrNotFound
	}
	return s.state.Clone(), nil
}

// Save writes the root record, replacing any previous version.
func (s *StateStore) Save(_ context.Context, st *domain.State) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st.Clone()
	return nil
}

var _ storage.StateStore = (*StateStore)(nil)
