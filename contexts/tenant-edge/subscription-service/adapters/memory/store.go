package memory

import (
	"context"
	"sync"

	"meridian/contexts/tenant-edge/subscription-service/domain/entities"
	"meridian/contexts/tenant-edge/subscription-service/ports"
)

// Store keeps subscriptions and their outbox events in memory. The "outbox"
// here is just a recorded slice; tests assert the write happened together
// with the subscription.
type Store struct {
	mu            sync.RWMutex
	subscriptions map[string]entities.Subscription
	events        []ports.StatusChangedEvent
}

func NewStore() *Store {
	return &Store{
		subscriptions: make(map[string]entities.Subscription),
	}
}

func (s *Store) GetByTenant(_ context.Context, tenantID string) (entities.Subscription, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subscription, ok := s.subscriptions[tenantID]
	return subscription, ok, nil
}

func (s *Store) SaveWithOutbox(_ context.Context, subscription entities.Subscription, event ports.StatusChangedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[subscription.TenantID] = subscription
	s.events = append(s.events, event)
	return nil
}

func (s *Store) Seed(subscription entities.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[subscription.TenantID] = subscription
}

func (s *Store) Events() []ports.StatusChangedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.StatusChangedEvent, len(s.events))
	copy(out, s.events)
	return out
}
