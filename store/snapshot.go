package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotTTL is how long a snapshot key survives once written (spec.md
// §6: "KV snapshot key schema (TTL 15 minutes)"). The original service
// used a 1-hour TTL; this is a deliberate shortening, not a bug — the
// snapshot store is explicitly advisory (spec.md §1 Non-goals).
const SnapshotTTL = 15 * time.Minute

// SnapshotStore writes TTL-bounded blobs into the KV store. Values are
// stored as the raw decoded payload's byte encoding at the caller's
// discretion — this package never interprets them.
type SnapshotStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewSnapshotStore wraps an already-configured go-redis client. The caller
// owns the client's lifecycle (Close); SnapshotStore only issues commands
// against it.
func NewSnapshotStore(client *redis.Client, log zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, log: log.With().Str("component", "snapshot_store").Logger()}
}

// Write sets key to value with SnapshotTTL. Errors are returned to the
// caller (the ingest loop logs and continues per spec.md §7: SnapshotWrite
// failures are recoverable).
func (s *SnapshotStore) Write(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, SnapshotTTL).Err()
}

// Ping checks connectivity; used at startup to fail fast on a bad DSN.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
