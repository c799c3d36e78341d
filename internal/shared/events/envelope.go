package events

import (
	"encoding/json"
	"time"
)

// Envelope is the shared event shape used in Meridian.
// The delivery worker wraps outbox payloads in this shape before publishing;
// consumers on the central side decode Data with their own contracts.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SourceService string          `json:"source_service"`
	OccurredAtUTC time.Time       `json:"occurred_at_utc"`
	TenantID      string          `json:"tenant_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}
