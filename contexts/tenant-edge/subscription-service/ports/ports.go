package ports

import (
	"context"
	"time"

	"meridian/contexts/tenant-edge/subscription-service/domain/entities"
)

// StatusChangedEvent is the outbox row the repository must persist in the
// same transaction as the subscription write.
type StatusChangedEvent struct {
	EventID    string
	EventType  string
	Payload    []byte
	OccurredAt time.Time
}

type Repository interface {
	GetByTenant(ctx context.Context, tenantID string) (entities.Subscription, bool, error)
	// SaveWithOutbox upserts the subscription and appends the event to the
	// outbox ledger atomically. Neither side is visible unless both commit.
	SaveWithOutbox(ctx context.Context, subscription entities.Subscription, event StatusChangedEvent) error
}

// EdgeNotifier pushes a change to the tenant's registered edge nodes.
// Delivery is best-effort; the caller treats errors as advisory.
type EdgeNotifier interface {
	NotifySubscriptionChanged(ctx context.Context, tenantID string, payload any) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}
