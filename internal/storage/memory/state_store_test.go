package memory

import (
	"context"
	"errors"
	"testing"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

func TestStateStore_SaveAndLoad(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()

	s := domain.NewState("route1", "admin1", "cosmos-hub", []byte{1, 2})
	s.TicketSeq = 5

	err := store.Save(ctx, s)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Route != "route1" || got.TicketSeq != 5 {
		t.Errorf("State mismatch: %+v", got)
	}
}

func TestStateStore_NotFound(t *testing.T) {
	store := NewStateStore()

	_, err := store.Load(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStateStore_NilInput(t *testing.T) {
	store := NewStateStore()

	err := store.Save(context.Background(), nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestStateStore_Isolation(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()

	s := domain.NewState("route1", "admin1", "cosmos-hub", nil)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutating the loaded copy must not leak into the store.
	got, _ := store.Load(ctx)
	got.HandledDirectives[1] = true

	fresh, _ := store.Load(ctx)
	if fresh.HandledDirectives[1] {
		t.Error("Load should return an isolated copy")
	}

	// Mutating the saved value afterwards must not leak either.
	s.TicketSeq = 99
	fresh, _ = store.Load(ctx)
	if fresh.TicketSeq == 99 {
		t.Error("Save should store an isolated copy")
	}
}
