package memory

import (
	"context"
	"testing"

	"bridge-port/internal/domain"
)

func TestEventStore_AppendAndGetByType(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	seq := uint64(3)
	records := []*domain.EventRecord{
		{Timestamp: 1000, Type: domain.EventTokenMinted, Attributes: []domain.Attribute{{Key: "ticket_id", Value: "t1"}}},
		{Timestamp: 2000, Type: domain.EventRedeemRequested, Seq: &seq},
		{Timestamp: 3000, Type: domain.EventTokenMinted},
	}
	if err := store.Append(ctx, records); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.GetByType(ctx, domain.EventTokenMinted, 0, 5000)
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].Timestamp != 1000 || got[1].Timestamp != 3000 {
		t.Errorf("Records not ordered by timestamp: %+v", got)
	}
	if got[0].Attributes[0].Value != "t1" {
		t.Errorf("Attributes mismatch: %+v", got[0].Attributes)
	}
}

func TestEventStore_GetByType_TimeWindow(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	store.Append(ctx, []*domain.EventRecord{
		{Timestamp: 1000, Type: domain.EventTokenMinted},
		{Timestamp: 2000, Type: domain.EventTokenMinted},
		{Timestamp: 3000, Type: domain.EventTokenMinted},
	})

	// Bounds are inclusive.
	got, err := store.GetByType(ctx, domain.EventTokenMinted, 2000, 3000)
	if err != nil {
		t.Fatalf("GetByType failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 records, got %d", len(got))
	}
}

func TestEventStore_Isolation(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	rec := &domain.EventRecord{Timestamp: 1000, Type: domain.EventTokenMinted,
		Attributes: []domain.Attribute{{Key: "amount", Value: "5"}}}
	store.Append(ctx, []*domain.EventRecord{rec})

	// Mutating the input after Append must not affect the stored record.
	rec.Attributes[0].Value = "changed"

	got, _ := store.GetByType(ctx, domain.EventTokenMinted, 0, 5000)
	if got[0].Attributes[0].Value != "5" {
		t.Errorf("Stored record shares the caller's attribute slice")
	}
}
