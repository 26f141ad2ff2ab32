package memory

import (
	"context"
	"sort"
	"sync"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu      sync.RWMutex
	records []*domain.EventRecord
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Append adds event records in bulk.
func (s *EventStore) Append(_ context.Context, records []*domain.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		recCopy := *r
		recCopy.Attributes = append([]domain.Attribute(nil), r.Attributes...)
		s.records = append(s.records, &recCopy)
	}
	return nil
}

// GetByType retrieves records of one event type within [start, end], ordered by timestamp ASC.
func (s *EventStore) GetByType(_ context.Context, eventType string, start, end int64) ([]*domain.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EventRecord
	for _, r := range s.records {
		if r.Type == eventType && r.Timestamp >= start && r.Timestamp <= end {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp < result[j].Timestamp })
	return result, nil
}

var _ storage.EventStore = (*EventStore)(nil)
