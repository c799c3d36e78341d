package entities

import (
	"strings"
	"time"

	domainerrors "meridian/contexts/tenant-edge/push-notifier/domain/errors"
)

// TenantNode is an edge deployment registered to receive push notifications
// for a tenant. CallbackSecret is base64-encoded and shared once at
// registration or rotation; it is never transmitted afterwards. Inactive
// nodes are skipped by the notifier but retained.
type TenantNode struct {
	NodeID         string
	TenantID       string
	CallbackURL    string
	Name           string
	IsActive       bool
	RegisteredAt   time.Time
	CallbackSecret string
}

func NewTenantNode(nodeID, tenantID, callbackURL, name, secret string, registeredAt time.Time) (TenantNode, error) {
	if strings.TrimSpace(nodeID) == "" ||
		strings.TrimSpace(tenantID) == "" {
		return TenantNode{}, domainerrors.ErrInvalidNode
	}
	url := strings.TrimSpace(callbackURL)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return TenantNode{}, domainerrors.ErrInvalidCallbackURL
	}

	return TenantNode{
		NodeID:         nodeID,
		TenantID:       tenantID,
		CallbackURL:    url,
		Name:           strings.TrimSpace(name),
		IsActive:       true,
		RegisteredAt:   registeredAt.UTC(),
		CallbackSecret: secret,
	}, nil
}
