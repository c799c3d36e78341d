package application

import (
	"context"
	"log/slog"

	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
	"meridian/contexts/tenant-edge/push-notifier/ports"
)

// Registry manages the edge node lifecycle: registration, secret rotation,
// deactivation. Secrets leave this service exactly once, in the return value
// of RegisterNode or RotateSecret.
type Registry struct {
	Nodes       ports.NodeRepository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Secrets     ports.SecretGenerator
	Logger      *slog.Logger
}

// RegisterNode creates an active node and returns it together with the
// freshly issued plaintext secret.
func (r Registry) RegisterNode(ctx context.Context, tenantID, callbackURL, name string) (entities.TenantNode, string, error) {
	nodeID, err := r.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.TenantNode{}, "", err
	}
	secret, err := r.Secrets.NewSecret(ctx)
	if err != nil {
		return entities.TenantNode{}, "", err
	}

	node, err := entities.NewTenantNode(nodeID, tenantID, callbackURL, name, secret, r.Clock.Now())
	if err != nil {
		return entities.TenantNode{}, "", err
	}
	if err := r.Nodes.Create(ctx, node); err != nil {
		return entities.TenantNode{}, "", err
	}

	ResolveLogger(r.Logger).Info("tenant node registered",
		"event", "tenant_node_registered",
		"module", "tenant-edge/push-notifier",
		"layer", "application",
		"tenant_id", tenantID,
		"node_id", nodeID,
	)

	node.CallbackSecret = ""
	return node, secret, nil
}

// ListNodes returns the tenant's nodes with secrets stripped.
func (r Registry) ListNodes(ctx context.Context, tenantID string) ([]entities.TenantNode, error) {
	nodes, err := r.Nodes.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		nodes[i].CallbackSecret = ""
	}
	return nodes, nil
}

// RotateSecret replaces a node's signing secret and returns the new
// plaintext value once.
func (r Registry) RotateSecret(ctx context.Context, nodeID string) (string, error) {
	if _, err := r.Nodes.GetNode(ctx, nodeID); err != nil {
		return "", err
	}
	secret, err := r.Secrets.NewSecret(ctx)
	if err != nil {
		return "", err
	}
	if err := r.Nodes.UpdateSecret(ctx, nodeID, secret); err != nil {
		return "", err
	}

	ResolveLogger(r.Logger).Info("tenant node secret rotated",
		"event", "tenant_node_secret_rotated",
		"module", "tenant-edge/push-notifier",
		"layer", "application",
		"node_id", nodeID,
	)
	return secret, nil
}

func (r Registry) DeactivateNode(ctx context.Context, nodeID string) error {
	return r.Nodes.SetActive(ctx, nodeID, false)
}
