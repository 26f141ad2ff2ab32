package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"bridge-port/internal/domain"
	"bridge-port/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse.
// bridge_events is a MergeTree: an append-only analytics sink for relayers and
// auditors, not a uniqueness-enforcing table.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Append adds event records in bulk.
func (s *EventStore) Append(ctx context.Context, records []*domain.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO bridge_events (
			timestamp_ms, event_type, attributes, seq
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		attrs, err := json.Marshal(r.Attributes)
		if err != nil {
			return fmt.Errorf("encode event attributes: %w", err)
		}
		var seq int64 = -1
		if r.Seq != nil {
			seq = int64(*r.Seq)
		}
		if err := batch.Append(uint64(r.Timestamp), r.Type, string(attrs), seq); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByType retrieves records of one event type within [start, end], ordered by timestamp ASC.
func (s *EventStore) GetByType(ctx context.Context, eventType string, start, end int64) ([]*domain.EventRecord, error) {
	query := `
		SELECT timestamp_ms, event_type, attributes, seq
		FROM bridge_events
		WHERE event_type = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, eventType, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query events by type: %w", err)
	}
	defer rows.Close()

	var records []*domain.EventRecord
	for rows.Next() {
		var r domain.EventRecord
		var timestampMs uint64
		var attrs string
		var seq int64

		if err := rows.Scan(&timestampMs, &r.Type, &attrs, &seq); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		if attrs != "" && attrs != "null" {
			if err := json.Unmarshal([]byte(attrs), &r.Attributes); err != nil {
				return nil, fmt.Errorf("decode event attributes: %w", err)
			}
		}
		r.Timestamp = int64(timestampMs)
		if seq >= 0 {
			v := uint64(seq)
			r.Seq = &v
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return records, nil
}
