package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
	"bridge-port/internal/storage/postgres"
)

func ticketRequest(seq uint64, chain domain.ChainID) *domain.OutboundTicketRequest {
	return &domain.OutboundTicketRequest{
		Seq:           seq,
		TargetChainID: chain,
		Sender:        "cosmos1user",
		Receiver:      "bc1qreceiver",
		TokenID:       "Bitcoin-runes-HOPE•YOU•GET•RICH",
		Amount:        500,
		Action:        domain.ActionRedeem,
		Timestamp:     1700000000000000000,
		BlockHeight:   42,
		Memo:          "memo-123",
		FeeToken:      "uatom",
		FeeAmount:     6,
	}
}

func TestTicketRequestStore_InsertAndGetBySeq(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTicketRequestStore(pool)
	ctx := context.Background()

	req := ticketRequest(0, "bitcoin")
	require.NoError(t, store.Insert(ctx, req))

	got, err := store.GetBySeq(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, req.Seq, got.Seq)
	assert.Equal(t, req.TargetChainID, got.TargetChainID)
	assert.Equal(t, req.Sender, got.Sender)
	assert.Equal(t, req.Receiver, got.Receiver)
	assert.Equal(t, req.TokenID, got.TokenID)
	assert.Equal(t, req.Amount, got.Amount)
	assert.Equal(t, req.Action, got.Action)
	assert.Equal(t, req.Timestamp, got.Timestamp)
	assert.Equal(t, req.BlockHeight, got.BlockHeight)
	assert.Equal(t, req.Memo, got.Memo)
	assert.Equal(t, req.FeeToken, got.FeeToken)
	assert.Equal(t, req.FeeAmount, got.FeeAmount)
}

func TestTicketRequestStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTicketRequestStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, ticketRequest(0, "bitcoin")))

	err := store.Insert(ctx, ticketRequest(0, "bitcoin"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTicketRequestStore_GetBySeqNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTicketRequestStore(pool)

	_, err := store.GetBySeq(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTicketRequestStore_GetBySeqRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTicketRequestStore(pool)
	ctx := context.Background()

	for _, seq := range []uint64{2, 0, 3, 1} {
		require.NoError(t, store.Insert(ctx, ticketRequest(seq, "bitcoin")))
	}

	got, err := store.GetBySeqRange(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)
}

func TestTicketRequestStore_GetByTargetChain(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTicketRequestStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, ticketRequest(0, "bitcoin")))
	require.NoError(t, store.Insert(ctx, ticketRequest(1, "ethereum")))
	require.NoError(t, store.Insert(ctx, ticketRequest(2, "bitcoin")))

	got, err := store.GetByTargetChain(ctx, "bitcoin")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(0), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)
}
