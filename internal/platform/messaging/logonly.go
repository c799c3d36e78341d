package messaging

import (
	"context"
	"log/slog"

	"meridian/internal/shared/events"
)

// LogPublisher is the broker-less publisher used when no Kafka deployment is
// configured. It records the event in the process log and succeeds, which
// keeps the outbox draining on disconnected or central-only sites.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event events.Envelope) error {
	p.logger.Info("event published",
		"event", "log_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"payload", string(event.Data),
	)
	return nil
}
