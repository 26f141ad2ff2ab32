package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// StateStore implements storage.StateStore using PostgreSQL.
// The root record is stored as a single JSONB row so that Save replaces the
// whole snapshot atomically.
type StateStore struct {
	pool *Pool
}

// NewStateStore creates a new StateStore.
func NewStateStore(pool *Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StateStore = (*StateStore)(nil)

// Load retrieves the root record. Returns ErrNotFound if never saved.
func (s *StateStore) Load(ctx context.Context) (*domain.State, error) {
	query := `
		SELECT state
		FROM bridge_state
		WHERE id = 1
	`

	var raw []byte
	err := s.pool.QueryRow(ctx, query).Scan(&raw)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load bridge state: %w", err)
	}

	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode bridge state: %w", err)
	}
	return &st, nil
}

// Save writes the root record, replacing any previous version atomically.
func (s *StateStore) Save(ctx context.Context, st *domain.State) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode bridge state: %w", err)
	}

	query := `
		INSERT INTO bridge_state (id, version, state, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version, state = EXCLUDED.state, updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, st.Version, raw); err != nil {
		return fmt.Errorf("save bridge state: %w", err)
	}
	return nil
}
