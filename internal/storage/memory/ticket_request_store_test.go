package memory

import (
	"context"
	"errors"
	"testing"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

func testRequest(seq uint64, chain domain.ChainID) *domain.OutboundTicketRequest {
	return &domain.OutboundTicketRequest{
		Seq:           seq,
		TargetChainID: chain,
		Sender:        "cosmos1user",
		Receiver:      "bc1qreceiver",
		TokenID:       "Bitcoin-runes-WBTC",
		Amount:        500,
		Action:        domain.ActionRedeem,
		Timestamp:     1700000000000000000,
		BlockHeight:   42,
		FeeToken:      "uatom",
		FeeAmount:     6,
	}
}

func TestTicketRequestStore_InsertAndGet(t *testing.T) {
	store := NewTicketRequestStore()
	ctx := context.Background()

	err := store.Insert(ctx, testRequest(0, "bitcoin"))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySeq(ctx, 0)
	if err != nil {
		t.Fatalf("GetBySeq failed: %v", err)
	}
	if got.TokenID != "Bitcoin-runes-WBTC" || got.Amount != 500 {
		t.Errorf("Request mismatch: %+v", got)
	}
}

func TestTicketRequestStore_DuplicateKey(t *testing.T) {
	store := NewTicketRequestStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRequest(0, "bitcoin")); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, testRequest(0, "bitcoin"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTicketRequestStore_NotFound(t *testing.T) {
	store := NewTicketRequestStore()

	_, err := store.GetBySeq(context.Background(), 7)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTicketRequestStore_GetBySeqRange(t *testing.T) {
	store := NewTicketRequestStore()
	ctx := context.Background()

	for _, seq := range []uint64{3, 1, 0, 2} {
		if err := store.Insert(ctx, testRequest(seq, "bitcoin")); err != nil {
			t.Fatalf("Insert %d failed: %v", seq, err)
		}
	}

	got, err := store.GetBySeqRange(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetBySeqRange failed: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 2 {
		t.Errorf("Range mismatch: %+v", got)
	}
}

func TestTicketRequestStore_GetByTargetChain(t *testing.T) {
	store := NewTicketRequestStore()
	ctx := context.Background()

	store.Insert(ctx, testRequest(0, "bitcoin"))
	store.Insert(ctx, testRequest(1, "ethereum"))
	store.Insert(ctx, testRequest(2, "bitcoin"))

	got, err := store.GetByTargetChain(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("GetByTargetChain failed: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 0 || got[1].Seq != 2 {
		t.Errorf("Result mismatch: %+v", got)
	}
}
