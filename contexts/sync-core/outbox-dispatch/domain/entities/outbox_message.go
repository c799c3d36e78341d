package entities

import "time"

// OutboxMessage is one domain event awaiting delivery, persisted in the same
// transaction as the business write it reports.
//
// ProcessedAt != nil means the event has been published at least once.
// Attempts only increases; it is the operator's signal for stuck messages
// since retries are unbounded.
type OutboxMessage struct {
	ID          string
	EventType   string
	Payload     []byte
	OccurredAt  time.Time
	ProcessedAt *time.Time
	Attempts    int
}

func (m OutboxMessage) Processed() bool {
	return m.ProcessedAt != nil
}
