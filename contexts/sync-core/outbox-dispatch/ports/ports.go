package ports

import (
	"context"
	"encoding/json"
	"time"

	"meridian/contexts/sync-core/outbox-dispatch/domain/entities"
	"meridian/internal/shared/events"
)

// Ledger models worker-side outbox polling and acknowledgement.
// Appending happens through producer-owned transactions (see the postgres
// adapter's tx-scoped helper); the ledger is append-only from the worker's
// point of view.
type Ledger interface {
	// NextUnprocessed returns the oldest message with no processed timestamp,
	// ordered strictly by occurrence time.
	NextUnprocessed(ctx context.Context) (entities.OutboxMessage, bool, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	IncrementAttempts(ctx context.Context, id string) (int, error)
}

// EventPublisher hands a processed event to the message channel. Implemented
// by the broker-backed and log-only platform publishers.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Envelope) error
}

// LocalNotifier is the in-process hook invoked after a successful publish so
// listeners inside the process observe the event immediately.
type LocalNotifier interface {
	Notify(ctx context.Context, eventType string, payload json.RawMessage) error
}

// GroupBroadcaster delivers a processed event to one named live-subscriber
// group. Per-group failures are the caller's to tolerate.
type GroupBroadcaster interface {
	Broadcast(ctx context.Context, group string, eventType string, payload json.RawMessage) error
}

// Clock allows deterministic testing of processed timestamps and backoff.
type Clock interface {
	Now() time.Time
}

// Sleeper abstracts backoff waits so tests run without real delays. The
// implementation must return early when ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}
