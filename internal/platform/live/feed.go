package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const feedCapacity = 100

// Feed keeps the most recent notifications so administrative clients can
// poll what the delivery worker has processed. In-process listeners observe
// events here immediately after publish, before any broker round trip.
type Feed struct {
	mu     sync.Mutex
	recent []Notification
	logger *slog.Logger
}

func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{logger: logger}
}

func (f *Feed) Notify(_ context.Context, eventType string, payload json.RawMessage) error {
	entry := Notification{
		EventType: eventType,
		Payload:   payload,
		At:        time.Now().UTC(),
	}

	f.mu.Lock()
	f.recent = append(f.recent, entry)
	if len(f.recent) > feedCapacity {
		f.recent = f.recent[len(f.recent)-feedCapacity:]
	}
	f.mu.Unlock()

	f.logger.Info("notification recorded",
		"event", "feed_notify",
		"module", "internal/platform/live",
		"layer", "platform",
		"event_type", eventType,
	)
	return nil
}

// Recent returns notifications newest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.recent))
	for i := len(f.recent) - 1; i >= 0; i-- {
		out = append(out, f.recent[i])
	}
	return out
}
