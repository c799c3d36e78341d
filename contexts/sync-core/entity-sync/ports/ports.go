package ports

import (
	"context"
	"encoding/json"
	"time"
)

// Record is the engine's view of one syncable row. Payload is the full wire
// document exchanged with the central authority; it must carry "id",
// "updated_at" and, for tenant-scoped entities, "tenant_id" keys. ID,
// TenantID and UpdatedAt mirror those keys so the engine can merge without
// knowing the concrete entity shape.
type Record struct {
	ID        string
	TenantID  string
	UpdatedAt *time.Time
	Payload   json.RawMessage
}

// RecordStore adapts one domain entity type to the sync engine. The store
// owns decoding Payload into its concrete row shape; the engine owns the
// merge policy.
type RecordStore interface {
	EntityName() string
	// ListUnsynced returns every record whose is-synced flag is false.
	ListUnsynced(ctx context.Context) ([]Record, error)
	// MarkSynced flips is-synced and stamps the sync version after a
	// successful push of the listed records.
	MarkSynced(ctx context.Context, ids []string, syncVersion int64) error
	Get(ctx context.Context, id string) (Record, bool, error)
	Insert(ctx context.Context, record Record) error
	// Replace overwrites all local field values with the remote record's.
	Replace(ctx context.Context, record Record) error
}

// TenantRecordStore narrows push scope to a single tenant for the
// tenant-scoped sync variant.
type TenantRecordStore interface {
	RecordStore
	ListUnsyncedForTenant(ctx context.Context, tenantID string) ([]Record, error)
}

// CloudClient is the resilient remote sync transport. Push surfaces
// transport errors after its retry schedule; Pull swallows them and returns
// an empty set so pull failure never blocks push or other entity types. Both
// are no-ops when no remote endpoint is configured.
type CloudClient interface {
	Push(ctx context.Context, entityName string, records []json.RawMessage) error
	Pull(ctx context.Context, entityName string, since time.Time) ([]json.RawMessage, error)
}

type Clock interface {
	Now() time.Time
}
