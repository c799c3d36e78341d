package ports

import (
	"context"
	"net/http"
	"time"

	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
)

// NodeRepository owns tenant node persistence. Listings include the stored
// secret (the notifier needs it to sign); transport-facing callers must
// strip it.
type NodeRepository interface {
	Create(ctx context.Context, node entities.TenantNode) error
	ListByTenant(ctx context.Context, tenantID string) ([]entities.TenantNode, error)
	ListActiveByTenant(ctx context.Context, tenantID string) ([]entities.TenantNode, error)
	GetNode(ctx context.Context, nodeID string) (entities.TenantNode, error)
	UpdateSecret(ctx context.Context, nodeID string, secret string) error
	SetActive(ctx context.Context, nodeID string, active bool) error
}

// HTTPDoer abstracts the outbound webhook client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// SecretGenerator issues fresh callback signing secrets, base64-encoded.
type SecretGenerator interface {
	NewSecret(ctx context.Context) (string, error)
}
