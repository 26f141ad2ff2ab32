package storage

import (
	"context"

	"bridge-port/internal/domain"
)

// StateStore persists the single versioned root record.
type StateStore interface {
	// Load retrieves the root record. Returns ErrNotFound if never saved.
	Load(ctx context.Context) (*domain.State, error)

	// Save writes the root record, replacing any previous version atomically.
	Save(ctx context.Context, s *domain.State) error
}

// TicketRequestStore provides access to outbound_ticket_requests storage.
// The table is append-only: records are never updated or deleted.
type TicketRequestStore interface {
	// Insert adds a new request. Returns ErrDuplicateKey if seq exists.
	Insert(ctx context.Context, r *domain.OutboundTicketRequest) error

	// GetBySeq retrieves a request by sequence number. Returns ErrNotFound if not exists.
	GetBySeq(ctx context.Context, seq uint64) (*domain.OutboundTicketRequest, error)

	// GetBySeqRange retrieves requests with seq in [start, end] (inclusive), ordered by seq ASC.
	GetBySeqRange(ctx context.Context, start, end uint64) ([]*domain.OutboundTicketRequest, error)

	// GetByTargetChain retrieves all requests for a destination chain, ordered by seq ASC.
	GetByTargetChain(ctx context.Context, chainID domain.ChainID) ([]*domain.OutboundTicketRequest, error)
}

// EventStore appends emitted events for off-chain relayers and auditors.
type EventStore interface {
	// Append adds event records in bulk.
	Append(ctx context.Context, records []*domain.EventRecord) error

	// GetByType retrieves records of one event type within [start, end]
	// (Unix ms, inclusive), ordered by timestamp ASC.
	GetByType(ctx context.Context, eventType string, start, end int64) ([]*domain.EventRecord, error)
}
