package memory

import (
	"context"
	"encoding/json"
	"sync"

	domainerrors "meridian/contexts/sync-core/entity-sync/domain/errors"
	"meridian/contexts/sync-core/entity-sync/ports"
)

// Store is an in-memory record store for one entity type, used by tests and
// disconnected development runs.
type Store struct {
	entity  string
	mu      sync.Mutex
	records map[string]ports.Record
	synced  map[string]bool
}

func NewStore(entityName string) *Store {
	return &Store{
		entity:  entityName,
		records: make(map[string]ports.Record),
		synced:  make(map[string]bool),
	}
}

// Seed loads a record with an explicit synced flag, bypassing merge rules.
func (s *Store) Seed(record ports.Record, synced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	s.synced[record.ID] = synced
}

func (s *Store) EntityName() string {
	return s.entity
}

func (s *Store) ListUnsynced(_ context.Context) ([]ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ports.Record
	for id, record := range s.records {
		if !s.synced[id] {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *Store) ListUnsyncedForTenant(_ context.Context, tenantID string) ([]ports.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ports.Record
	for id, record := range s.records {
		if !s.synced[id] && record.TenantID == tenantID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, ids []string, syncVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		record, ok := s.records[id]
		if !ok {
			return domainerrors.ErrRecordNotFound
		}
		s.synced[id] = true
		record.Payload = stampSyncFields(record.Payload, syncVersion)
		s.records[id] = record
	}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (ports.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	return record, ok, nil
}

func (s *Store) Insert(_ context.Context, record ports.Record) error {
	return s.apply(record)
}

func (s *Store) Replace(_ context.Context, record ports.Record) error {
	return s.apply(record)
}

func (s *Store) apply(record ports.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record
	s.synced[record.ID] = payloadSynced(record.Payload)
	return nil
}

// payloadSynced reads the wire document's is_synced flag; records pulled
// from the authority default to synced so they are not echoed back.
func payloadSynced(payload json.RawMessage) bool {
	var probe struct {
		IsSynced *bool `json:"is_synced"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil || probe.IsSynced == nil {
		return true
	}
	return *probe.IsSynced
}

func stampSyncFields(payload json.RawMessage, syncVersion int64) json.RawMessage {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return payload
	}
	fields["is_synced"] = true
	fields["sync_version"] = syncVersion
	stamped, err := json.Marshal(fields)
	if err != nil {
		return payload
	}
	return stamped
}
