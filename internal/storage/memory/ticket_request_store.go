package memory

import (
	"context"
	"sort"
	"sync"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// TicketRequestStore is an in-memory implementation of storage.TicketRequestStore.
type TicketRequestStore struct {
	mu    sync.RWMutex
	bySeq map[uint64]*domain.OutboundTicketRequest
}

// NewTicketRequestStore creates a new in-memory ticket request store.
func NewTicketRequestStore() *TicketRequestStore {
	return &TicketRequestStore{
		bySeq: make(map[uint64]*domain.OutboundTicketRequest),
	}
}

// Insert adds a new request. Returns ErrDuplicateKey if seq exists.
func (s *TicketRequestStore) Insert(_ context.Context, r *domain.OutboundTicketRequest) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySeq[r.Seq]; exists {
		return storage.ErrDuplicateKey
	}

	reqCopy := *r
	s.bySeq[r.Seq] = &reqCopy
	return nil
}

// GetBySeq retrieves a request by sequence number. Returns ErrNotFound if not exists.
func (s *TicketRequestStore) GetBySeq(_ context.Context, seq uint64) (*domain.OutboundTicketRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.bySeq[seq]
	if !exists {
		return nil, storage.ErrNotFound
	}

	reqCopy := *r
	return &reqCopy, nil
}

// GetBySeqRange retrieves requests with seq in [start, end], ordered by seq ASC.
func (s *TicketRequestStore) GetBySeqRange(_ context.Context, start, end uint64) ([]*domain.OutboundTicketRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OutboundTicketRequest
	for seq, r := range s.bySeq {
		if seq >= start && seq <= end {
			reqCopy := *r
			result = append(result, &reqCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

// GetByTargetChain retrieves all requests for a destination chain, ordered by seq ASC.
func (s *TicketRequestStore) GetByTargetChain(_ context.Context, chainID domain.ChainID) ([]*domain.OutboundTicketRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.OutboundTicketRequest
	for _, r := range s.bySeq {
		if r.TargetChainID == chainID {
			reqCopy := *r
			result = append(result, &reqCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

var _ storage.TicketRequestStore = (*TicketRequestStore)(nil)
