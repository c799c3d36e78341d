package memory

import (
	"context"
	"sort"
	"sync"

	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
	domainerrors "meridian/contexts/tenant-edge/push-notifier/domain/errors"
)

// Store is the in-memory node registry used by tests.
type Store struct {
	mu    sync.Mutex
	nodes map[string]entities.TenantNode
}

func NewStore() *Store {
	return &Store{nodes: make(map[string]entities.TenantNode)}
}

func (s *Store) Create(_ context.Context, node entities.TenantNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.NodeID] = node
	return nil
}

func (s *Store) ListByTenant(_ context.Context, tenantID string) ([]entities.TenantNode, error) {
	return s.list(tenantID, false), nil
}

func (s *Store) ListActiveByTenant(_ context.Context, tenantID string) ([]entities.TenantNode, error) {
	return s.list(tenantID, true), nil
}

func (s *Store) GetNode(_ context.Context, nodeID string) (entities.TenantNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[nodeID]
	if !ok {
		return entities.TenantNode{}, domainerrors.ErrNodeNotFound
	}
	return node, nil
}

func (s *Store) UpdateSecret(_ context.Context, nodeID string, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[nodeID]
	if !ok {
		return domainerrors.ErrNodeNotFound
	}
	node.CallbackSecret = secret
	s.nodes[nodeID] = node
	return nil
}

func (s *Store) SetActive(_ context.Context, nodeID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.nodes[nodeID]
	if !ok {
		return domainerrors.ErrNodeNotFound
	}
	node.IsActive = active
	s.nodes[nodeID] = node
	return nil
}

func (s *Store) list(tenantID string, activeOnly bool) []entities.TenantNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.TenantNode
	for _, node := range s.nodes {
		if node.TenantID != tenantID {
			continue
		}
		if activeOnly && !node.IsActive {
			continue
		}
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out
}
