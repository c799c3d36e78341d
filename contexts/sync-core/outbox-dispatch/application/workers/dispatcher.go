package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	application "meridian/contexts/sync-core/outbox-dispatch/application"
	"meridian/contexts/sync-core/outbox-dispatch/domain/entities"
	"meridian/contexts/sync-core/outbox-dispatch/ports"
	"meridian/internal/shared/events"
)

const (
	defaultIdleDelay  = 2 * time.Second
	defaultFaultDelay = 5 * time.Second
	backoffBaseMillis = 1000
	backoffCapMillis  = 30000
	jitterMillis      = 500
)

// Dispatcher drains the outbox ledger, one active publish at a time.
// Publish retries are unbounded; delivery is at-least-once and consumers are
// assumed idempotent.
type Dispatcher struct {
	Ledger        ports.Ledger
	Publisher     ports.EventPublisher
	Notifier      ports.LocalNotifier
	Groups        ports.GroupBroadcaster
	Clock         ports.Clock
	Sleeper       ports.Sleeper
	SourceService string
	IdleDelay     time.Duration
	FaultDelay    time.Duration
	Logger        *slog.Logger
}

// Run loops until ctx is cancelled. Every failure mode inside an iteration
// is converted into a logged warning plus a backoff; the loop never brings
// down the host process.
func (d Dispatcher) Run(ctx context.Context) {
	logger := application.ResolveLogger(d.Logger)
	logger.Info("outbox dispatcher started",
		"event", "outbox_dispatcher_started",
		"module", "sync-core/outbox-dispatch",
		"layer", "worker",
	)
	for ctx.Err() == nil {
		d.runIteration(ctx, logger)
	}
}

func (d Dispatcher) runIteration(ctx context.Context, logger *slog.Logger) {
	message, ok, err := d.Ledger.NextUnprocessed(ctx)
	if err != nil {
		logger.Error("outbox fetch failed",
			"event", "outbox_fetch_failed",
			"module", "sync-core/outbox-dispatch",
			"layer", "worker",
			"error", err.Error(),
		)
		d.sleep(ctx, d.faultDelay())
		return
	}
	if !ok {
		d.sleep(ctx, d.idleDelay())
		return
	}

	envelope := d.buildEnvelope(message)
	if err := d.Publisher.Publish(ctx, envelope); err != nil {
		attempts, incErr := d.Ledger.IncrementAttempts(ctx, message.ID)
		if incErr != nil {
			logger.Error("outbox attempt increment failed",
				"event", "outbox_attempts_persist_failed",
				"module", "sync-core/outbox-dispatch",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", incErr.Error(),
			)
			d.sleep(ctx, d.faultDelay())
			return
		}

		backoff := publishBackoff(attempts)
		logger.Warn("outbox publish failed",
			"event", "outbox_publish_failed",
			"module", "sync-core/outbox-dispatch",
			"layer", "worker",
			"outbox_id", message.ID,
			"event_type", message.EventType,
			"attempts", attempts,
			"backoff", backoff.String(),
			"error", err.Error(),
		)
		d.sleep(ctx, backoff)
		return
	}

	if err := d.Ledger.MarkProcessed(ctx, message.ID, d.now()); err != nil {
		// Re-publishing next iteration is acceptable; at-least-once.
		if _, incErr := d.Ledger.IncrementAttempts(ctx, message.ID); incErr != nil {
			logger.Error("outbox attempt increment failed",
				"event", "outbox_attempts_persist_failed",
				"module", "sync-core/outbox-dispatch",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", incErr.Error(),
			)
		}
		logger.Error("outbox mark processed failed",
			"event", "outbox_mark_processed_failed",
			"module", "sync-core/outbox-dispatch",
			"layer", "worker",
			"outbox_id", message.ID,
			"error", err.Error(),
		)
		d.sleep(ctx, d.faultDelay())
		return
	}

	d.fanOut(ctx, logger, message, envelope)
}

func (d Dispatcher) fanOut(ctx context.Context, logger *slog.Logger, message entities.OutboxMessage, envelope events.Envelope) {
	if d.Notifier != nil {
		if err := d.Notifier.Notify(ctx, message.EventType, envelope.Data); err != nil {
			logger.Warn("local notification failed",
				"event", "outbox_local_notify_failed",
				"module", "sync-core/outbox-dispatch",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
		}
	}

	if d.Groups == nil {
		return
	}
	for _, group := range application.GroupsForEvent(message.EventType, envelope.Data) {
		if err := d.Groups.Broadcast(ctx, group, message.EventType, envelope.Data); err != nil {
			logger.Warn("group delivery failed",
				"event", "outbox_group_delivery_failed",
				"module", "sync-core/outbox-dispatch",
				"layer", "worker",
				"outbox_id", message.ID,
				"group", group,
				"error", err.Error(),
			)
		}
	}
}

// buildEnvelope decodes the stored payload best-effort: valid JSON rides as
// the envelope data unchanged, anything else is re-encoded as a JSON string
// so downstream consumers still receive the raw content.
func (d Dispatcher) buildEnvelope(message entities.OutboxMessage) events.Envelope {
	data := json.RawMessage(message.Payload)
	if !json.Valid(message.Payload) {
		encoded, err := json.Marshal(string(message.Payload))
		if err == nil {
			data = encoded
		}
	}

	var tenantID string
	var probe struct {
		TenantID string `json:"tenant_id"`
	}
	if json.Unmarshal(data, &probe) == nil {
		tenantID = probe.TenantID
	}

	return events.Envelope{
		EventID:       message.ID,
		EventType:     message.EventType,
		SourceService: d.SourceService,
		OccurredAtUTC: message.OccurredAt.UTC(),
		TenantID:      tenantID,
		Data:          data,
	}
}

func publishBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	base := float64(backoffBaseMillis)
	for i := 1; i < attempts; i++ {
		base *= 2
		if base >= backoffCapMillis {
			base = backoffCapMillis
			break
		}
	}
	jitter := rand.Intn(jitterMillis)
	return time.Duration(base+float64(jitter)) * time.Millisecond
}

func (d Dispatcher) now() time.Time {
	if d.Clock != nil {
		return d.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Dispatcher) idleDelay() time.Duration {
	if d.IdleDelay > 0 {
		return d.IdleDelay
	}
	return defaultIdleDelay
}

func (d Dispatcher) faultDelay() time.Duration {
	if d.FaultDelay > 0 {
		return d.FaultDelay
	}
	return defaultFaultDelay
}

func (d Dispatcher) sleep(ctx context.Context, delay time.Duration) {
	if d.Sleeper != nil {
		d.Sleeper.Sleep(ctx, delay)
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
