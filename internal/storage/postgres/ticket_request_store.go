package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// TicketRequestStore implements storage.TicketRequestStore using PostgreSQL.
type TicketRequestStore struct {
	pool *Pool
}

// NewTicketRequestStore creates a new TicketRequestStore.
func NewTicketRequestStore(pool *Pool) *TicketRequestStore {
	return &TicketRequestStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TicketRequestStore = (*TicketRequestStore)(nil)

const ticketRequestColumns = `
	seq, target_chain_id, sender, receiver, token_id, amount,
	action, ts, block_height, memo, fee_token, fee_amount
`

// Insert adds a new request. Returns ErrDuplicateKey if seq exists.
func (s *TicketRequestStore) Insert(ctx context.Context, r *domain.OutboundTicketRequest) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO outbound_ticket_requests (` + ticketRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		int64(r.Seq),
		string(r.TargetChainID),
		r.Sender,
		r.Receiver,
		string(r.TokenID),
		int64(r.Amount),
		string(r.Action),
		r.Timestamp,
		int64(r.BlockHeight),
		r.Memo,
		string(r.FeeToken),
		int64(r.FeeAmount),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert ticket request: %w", err)
	}
	return nil
}

// GetBySeq retrieves a request by sequence number. Returns ErrNotFound if not exists.
func (s *TicketRequestStore) GetBySeq(ctx context.Context, seq uint64) (*domain.OutboundTicketRequest, error) {
	query := `
		SELECT ` + ticketRequestColumns + `
		FROM outbound_ticket_requests
		WHERE seq = $1
	`

	row := s.pool.QueryRow(ctx, query, int64(seq))
	r, err := scanTicketRequest(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket request by seq: %w", err)
	}
	return r, nil
}

// GetBySeqRange retrieves requests with seq in [start, end], ordered by seq ASC.
func (s *TicketRequestStore) GetBySeqRange(ctx context.Context, start, end uint64) ([]*domain.OutboundTicketRequest, error) {
	query := `
		SELECT ` + ticketRequestColumns + `
		FROM outbound_ticket_requests
		WHERE seq >= $1 AND seq <= $2
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, int64(start), int64(end))
	if err != nil {
		return nil, fmt.Errorf("get ticket requests by seq range: %w", err)
	}
	defer rows.Close()

	return scanTicketRequests(rows)
}

// GetByTargetChain retrieves all requests for a destination chain, ordered by seq ASC.
func (s *TicketRequestStore) GetByTargetChain(ctx context.Context, chainID domain.ChainID) ([]*domain.OutboundTicketRequest, error) {
	query := `
		SELECT ` + ticketRequestColumns + `
		FROM outbound_ticket_requests
		WHERE target_chain_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, string(chainID))
	if err != nil {
		return nil, fmt.Errorf("get ticket requests by target chain: %w", err)
	}
	defer rows.Close()

	return scanTicketRequests(rows)
}

// scanTicketRequest scans a single row into an OutboundTicketRequest.
func scanTicketRequest(row pgx.Row) (*domain.OutboundTicketRequest, error) {
	var r domain.OutboundTicketRequest
	var seq, amount, blockHeight, feeAmount int64
	var targetChain, tokenID, action, feeToken string

	err := row.Scan(
		&seq,
		&targetChain,
		&r.Sender,
		&r.Receiver,
		&tokenID,
		&amount,
		&action,
		&r.Timestamp,
		&blockHeight,
		&r.Memo,
		&feeToken,
		&feeAmount,
	)
	if err != nil {
		return nil, err
	}

	r.Seq = uint64(seq)
	r.TargetChainID = domain.ChainID(targetChain)
	r.TokenID = domain.TokenID(tokenID)
	r.Amount = domain.Amount(amount)
	r.Action = domain.TxAction(action)
	r.BlockHeight = uint64(blockHeight)
	r.FeeToken = domain.TokenID(feeToken)
	r.FeeAmount = domain.Amount(feeAmount)
	return &r, nil
}

// scanTicketRequests scans multiple rows into a slice of OutboundTicketRequest.
func scanTicketRequests(rows pgx.Rows) ([]*domain.OutboundTicketRequest, error) {
	var requests []*domain.OutboundTicketRequest

	for rows.Next() {
		r, err := scanTicketRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket request row: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket request rows: %w", err)
	}

	return requests, nil
}
