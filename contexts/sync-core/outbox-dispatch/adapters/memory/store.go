package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"meridian/contexts/sync-core/outbox-dispatch/domain/entities"
	domainerrors "meridian/contexts/sync-core/outbox-dispatch/domain/errors"
)

// Store is the in-memory outbox ledger used by tests and disconnected
// development runs.
type Store struct {
	mu       sync.Mutex
	messages map[string]entities.OutboxMessage
}

func NewStore() *Store {
	return &Store{messages: make(map[string]entities.OutboxMessage)}
}

func (s *Store) Append(_ context.Context, message entities.OutboxMessage) error {
	if strings.TrimSpace(message.ID) == "" || strings.TrimSpace(message.EventType) == "" {
		return domainerrors.ErrInvalidMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[message.ID] = message
	return nil
}

func (s *Store) NextUnprocessed(_ context.Context) (entities.OutboxMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]entities.OutboxMessage, 0, len(s.messages))
	for _, message := range s.messages {
		if message.ProcessedAt == nil {
			pending = append(pending, message)
		}
	}
	if len(pending) == 0 {
		return entities.OutboxMessage{}, false, nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].OccurredAt.Before(pending[j].OccurredAt)
	})
	return pending[0], true, nil
}

func (s *Store) MarkProcessed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[id]
	if !ok {
		return domainerrors.ErrMessageNotFound
	}
	processed := at.UTC()
	message.ProcessedAt = &processed
	s.messages[id] = message
	return nil
}

func (s *Store) IncrementAttempts(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[id]
	if !ok {
		return 0, domainerrors.ErrMessageNotFound
	}
	message.Attempts++
	s.messages[id] = message
	return message.Attempts, nil
}

// Get exposes a message for test assertions.
func (s *Store) Get(id string) (entities.OutboxMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[id]
	return message, ok
}
