package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// upsertEventSQL realizes the insert-if-absent/append-if-present semantics
// spec.md §6 describes as the observable contract, as a single native
// upsert: ON CONFLICT lets Postgres do the existence check atomically
// instead of the select-then-branch the original service used.
const upsertEventSQL = `
INSERT INTO championship_events (session_id, string_code, events)
VALUES ($1, $2, ARRAY[$3::bytea])
ON CONFLICT (session_id, string_code)
DO UPDATE SET events = array_append(championship_events.events, $3::bytea)
`

// EventStore upserts per-(session, event-code) event lists into the
// relational store (spec.md §4.3).
type EventStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewEventStore wraps an already-configured pgx pool. The caller owns the
// pool's lifecycle.
func NewEventStore(pool *pgxpool.Pool, log zerolog.Logger) *EventStore {
	return &EventStore{pool: pool, log: log.With().Str("component", "event_store").Logger()}
}

// Append adds payload to the (sessionUID, code) event list, creating the
// row if it does not yet exist. Errors are returned to the caller (the
// ingest loop logs and continues per spec.md §7: EventWrite failures are
// recoverable).
func (s *EventStore) Append(ctx context.Context, sessionUID uint64, code string, payload []byte) error {
	if len(code) != EventCodeSize {
		return fmt.Errorf("store: event code %q is not %d bytes", code, EventCodeSize)
	}
	_, err := s.pool.Exec(ctx, upsertEventSQL, int64(sessionUID), code, payload)
	return err
}

// EventCodeSize is the fixed width of the event table's string_code
// column, matching codec.EventCodeSize (spec.md §6).
const EventCodeSize = 4

// Ping checks connectivity; used at startup to fail fast on a bad DSN.
func (s *EventStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
