package entities

import (
	"strings"
	"time"

	domainerrors "meridian/contexts/tenant-edge/subscription-service/domain/errors"
)

type Status string

const (
	StatusInactive  Status = "inactive"
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusInactive, StatusTrial, StatusActive, StatusPastDue, StatusSuspended, StatusCancelled:
		return status, nil
	default:
		return "", domainerrors.ErrInvalidStatus
	}
}

// Subscription is the per-tenant entitlement record. One row per tenant; the
// sync engine replicates it to edge nodes, which enforce IsActive locally.
type Subscription struct {
	ID        string
	TenantID  string
	Plan      string
	Status    Status
	StartAt   *time.Time
	EndAt     *time.Time
	RenewalAt *time.Time
	UpdatedAt *time.Time
}

// IsActive reports whether the tenant is entitled at the given instant.
// Trial counts as active; a past EndAt always disables, regardless of status.
func (s Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive && s.Status != StatusTrial {
		return false
	}
	if s.EndAt != nil && !s.EndAt.After(now) {
		return false
	}
	return true
}
