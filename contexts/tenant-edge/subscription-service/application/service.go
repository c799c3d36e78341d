package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"meridian/contexts/tenant-edge/subscription-service/domain/entities"
	domainerrors "meridian/contexts/tenant-edge/subscription-service/domain/errors"
	"meridian/contexts/tenant-edge/subscription-service/ports"
)

// EventTypeStatusChanged is the outbox event type emitted on every status
// transition. The payload carries tenant_id so downstream routing can scope
// fan-out to the affected tenant.
const EventTypeStatusChanged = "TenantSubscriptionChanged"

type ChangeStatusInput struct {
	Plan      string
	Status    string
	StartAt   *time.Time
	EndAt     *time.Time
	RenewalAt *time.Time
}

type Service struct {
	Repo        ports.Repository
	Notifier    ports.EdgeNotifier
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (s Service) GetSubscription(ctx context.Context, tenantID string) (entities.Subscription, error) {
	if strings.TrimSpace(tenantID) == "" {
		return entities.Subscription{}, domainerrors.ErrInvalidRequest
	}
	subscription, found, err := s.Repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return entities.Subscription{}, err
	}
	if !found {
		return entities.Subscription{}, domainerrors.ErrSubscriptionNotFound
	}
	return subscription, nil
}

// IsTenantAllowed reports whether the tenant may use the platform right now.
// An unknown tenant is simply not allowed; only infrastructure failures
// surface as errors.
func (s Service) IsTenantAllowed(ctx context.Context, tenantID string) (bool, error) {
	if strings.TrimSpace(tenantID) == "" {
		return false, domainerrors.ErrInvalidRequest
	}
	subscription, found, err := s.Repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return subscription.IsActive(s.now()), nil
}

// ChangeStatus persists the new subscription state together with its outbox
// event in one transaction, then notifies the tenant's edge nodes. Notifier
// failures are logged and swallowed; the commit already happened.
func (s Service) ChangeStatus(ctx context.Context, tenantID string, input ChangeStatusInput) (entities.Subscription, error) {
	if strings.TrimSpace(tenantID) == "" {
		return entities.Subscription{}, domainerrors.ErrInvalidRequest
	}
	status, err := entities.ParseStatus(input.Status)
	if err != nil {
		return entities.Subscription{}, err
	}

	now := s.now()
	subscription, found, err := s.Repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return entities.Subscription{}, err
	}
	if !found {
		subscription = entities.Subscription{
			ID:       s.IDGenerator.NewID(),
			TenantID: tenantID,
		}
	}
	subscription.Status = status
	if strings.TrimSpace(input.Plan) != "" {
		subscription.Plan = strings.TrimSpace(input.Plan)
	}
	if input.StartAt != nil {
		subscription.StartAt = input.StartAt
	}
	if input.EndAt != nil {
		subscription.EndAt = input.EndAt
	}
	if input.RenewalAt != nil {
		subscription.RenewalAt = input.RenewalAt
	}
	subscription.UpdatedAt = &now

	payload, err := json.Marshal(statusChangedPayload{
		TenantID:  subscription.TenantID,
		Plan:      subscription.Plan,
		Status:    string(subscription.Status),
		EndAt:     subscription.EndAt,
		ChangedAt: now,
	})
	if err != nil {
		return entities.Subscription{}, err
	}

	event := ports.StatusChangedEvent{
		EventID:    s.IDGenerator.NewID(),
		EventType:  EventTypeStatusChanged,
		Payload:    payload,
		OccurredAt: now,
	}
	if err := s.Repo.SaveWithOutbox(ctx, subscription, event); err != nil {
		return entities.Subscription{}, err
	}

	logger := ResolveLogger(s.Logger)
	logger.Info("tenant subscription status changed",
		"event", "tenant_subscription_status_changed",
		"module", "tenant-edge/subscription-service",
		"layer", "application",
		"tenant_id", tenantID,
		"status", string(status),
	)

	if s.Notifier != nil {
		if err := s.Notifier.NotifySubscriptionChanged(ctx, tenantID, json.RawMessage(payload)); err != nil {
			logger.Warn("edge notification failed after commit",
				"event", "subscription_edge_notify_failed",
				"module", "tenant-edge/subscription-service",
				"layer", "application",
				"tenant_id", tenantID,
				"error", err.Error(),
			)
		}
	}
	return subscription, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

type statusChangedPayload struct {
	TenantID  string     `json:"tenant_id"`
	Plan      string     `json:"plan,omitempty"`
	Status    string     `json:"status"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}
