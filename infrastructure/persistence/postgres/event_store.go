package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"idadmin/domain/events"
)

// Event publish status values on the outbox rows
const (
	publishStatusPending   = "pending"
	publishStatusPublished = "published"
)

// EventStore appends domain events to the outbox table. Rows are written in
// the same transaction as the owning aggregate's row change, consumed later
// by an out-of-band at-least-once relay, and never replayed for state.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new event store
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// AppendTx persists the events as an ordered append inside the caller's
// transaction. ord preserves in-buffer order for events sharing a timestamp.
func (s *EventStore) AppendTx(ctx context.Context, tx *sql.Tx, evts []events.Event) error {
	for i, evt := range evts {
		data, err := json.Marshal(evt.Data)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO domain_events (id, aggregate_id, aggregate_name, kind, data, occurred_at, ord, publish_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New().String(), evt.AggregateID, evt.AggregateName, string(evt.Kind),
			string(data), evt.OccurredAt, i, publishStatusPending,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// StoredEvent is an outbox row read back for delivery or inspection
type StoredEvent struct {
	ID            string
	AggregateID   string
	AggregateName string
	Kind          events.Kind
	Data          map[string]interface{}
	OccurredAt    time.Time
	PublishStatus string
}

// ListByAggregate returns the outbox rows for one aggregate in append order
func (s *EventStore) ListByAggregate(ctx context.Context, aggregateID string) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, aggregate_id, aggregate_name, kind, data, occurred_at, publish_status
		 FROM domain_events
		 WHERE aggregate_id = $1
		 ORDER BY occurred_at, ord`,
		aggregateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var evt StoredEvent
		var data string
		if err := rows.Scan(&evt.ID, &evt.AggregateID, &evt.AggregateName, &evt.Kind, &data, &evt.OccurredAt, &evt.PublishStatus); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &evt.Data); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// MarkPublished flips an outbox row after the relay has delivered it
func (s *EventStore) MarkPublished(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE domain_events SET publish_status = $1, published_at = $2 WHERE id = $3`,
		publishStatusPublished, time.Now().UTC(), id,
	)
	return err
}
