package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Notification is one event delivered to a live subscriber group.
type Notification struct {
	Group     string          `json:"group"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	At        time.Time       `json:"at"`
}

// Subscriber is one live consumer attached to a set of groups.
type Subscriber struct {
	C      chan Notification
	groups []string
	hub    *Hub
	closed bool
}

func (s *Subscriber) Close() {
	s.hub.remove(s)
}

// Hub is the in-process live-subscriber delivery mechanism addressed by
// named groups (admin, pharmacy, patient-{id}, ...). Single-instance only;
// cross-instance delivery would need a broker-backed bridge.
type Hub struct {
	mu     sync.RWMutex
	groups map[string][]*Subscriber
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		groups: make(map[string][]*Subscriber),
		logger: logger,
	}
}

func (h *Hub) Subscribe(groups []string, buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &Subscriber{
		C:      make(chan Notification, buffer),
		groups: append([]string(nil), groups...),
		hub:    h,
	}

	h.mu.Lock()
	for _, group := range sub.groups {
		h.groups[group] = append(h.groups[group], sub)
	}
	h.mu.Unlock()
	return sub
}

// Broadcast delivers to every subscriber of the group. Slow subscribers are
// skipped with a warning rather than blocking the caller.
func (h *Hub) Broadcast(ctx context.Context, group string, n Notification) error {
	n.Group = group

	// Sends stay under the read lock so remove() cannot close a channel
	// mid-broadcast. Sends never block; slow subscribers are skipped.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.groups[group] {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.C <- n:
		default:
			h.logger.Warn("dropping notification for slow subscriber",
				"event", "live_broadcast_drop",
				"module", "internal/platform/live",
				"layer", "platform",
				"group", group,
				"event_type", n.EventType,
			)
		}
	}
	return nil
}

func (h *Hub) remove(target *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if target.closed {
		return
	}
	target.closed = true

	for _, group := range target.groups {
		items := h.groups[group]
		if len(items) == 0 {
			continue
		}
		filtered := make([]*Subscriber, 0, len(items))
		for _, item := range items {
			if item != target {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) == 0 {
			delete(h.groups, group)
			continue
		}
		h.groups[group] = filtered
	}
	close(target.C)
}
