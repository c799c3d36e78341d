package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	memoryadapter "meridian/contexts/tenant-edge/subscription-service/adapters/memory"
	"meridian/contexts/tenant-edge/subscription-service/domain/entities"
	domainerrors "meridian/contexts/tenant-edge/subscription-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID() string {
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

type recordingNotifier struct {
	tenants []string
	err     error
}

func (n *recordingNotifier) NotifySubscriptionChanged(_ context.Context, tenantID string, _ any) error {
	n.tenants = append(n.tenants, tenantID)
	return n.err
}

func newService(store *memoryadapter.Store, notifier *recordingNotifier, now time.Time) Service {
	return Service{
		Repo:        store,
		Notifier:    notifier,
		Clock:       fixedClock{now: now},
		IDGenerator: &sequenceIDs{},
	}
}

func TestChangeStatusPersistsSubscriptionAndOutboxTogether(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := memoryadapter.NewStore()
	notifier := &recordingNotifier{}
	service := newService(store, notifier, now)

	subscription, err := service.ChangeStatus(context.Background(), "tenant-1", ChangeStatusInput{
		Plan:   "clinic-pro",
		Status: "active",
	})
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if subscription.Status != entities.StatusActive {
		t.Fatalf("status = %q, want %q", subscription.Status, entities.StatusActive)
	}
	if subscription.UpdatedAt == nil || !subscription.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at = %v, want %v", subscription.UpdatedAt, now)
	}

	events := store.Events()
	if len(events) != 1 {
		t.Fatalf("outbox events = %d, want 1", len(events))
	}
	event := events[0]
	if event.EventType != EventTypeStatusChanged {
		t.Fatalf("event type = %q, want %q", event.EventType, EventTypeStatusChanged)
	}
	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["tenant_id"] != "tenant-1" {
		t.Fatalf("payload tenant_id = %v, want tenant-1", payload["tenant_id"])
	}
	if payload["status"] != "active" {
		t.Fatalf("payload status = %v, want active", payload["status"])
	}

	if len(notifier.tenants) != 1 || notifier.tenants[0] != "tenant-1" {
		t.Fatalf("notified tenants = %v, want [tenant-1]", notifier.tenants)
	}
}

func TestChangeStatusSucceedsWhenNotifierFails(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := memoryadapter.NewStore()
	notifier := &recordingNotifier{err: errors.New("edge unreachable")}
	service := newService(store, notifier, now)

	if _, err := service.ChangeStatus(context.Background(), "tenant-1", ChangeStatusInput{Status: "suspended"}); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if _, found, _ := store.GetByTenant(context.Background(), "tenant-1"); !found {
		t.Fatal("subscription was not persisted")
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	service := newService(memoryadapter.NewStore(), &recordingNotifier{}, time.Now())

	_, err := service.ChangeStatus(context.Background(), "tenant-1", ChangeStatusInput{Status: "superb"})
	if !errors.Is(err, domainerrors.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if len(service.Notifier.(*recordingNotifier).tenants) != 0 {
		t.Fatal("notifier must not run on rejected input")
	}
}

func TestChangeStatusUpdatesExistingSubscription(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := memoryadapter.NewStore()
	store.Seed(entities.Subscription{
		ID:       "sub-1",
		TenantID: "tenant-1",
		Plan:     "clinic-basic",
		Status:   entities.StatusTrial,
	})
	service := newService(store, &recordingNotifier{}, now)

	subscription, err := service.ChangeStatus(context.Background(), "tenant-1", ChangeStatusInput{Status: "past_due"})
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if subscription.ID != "sub-1" {
		t.Fatalf("id = %q, want existing sub-1", subscription.ID)
	}
	if subscription.Plan != "clinic-basic" {
		t.Fatalf("plan = %q, want to keep clinic-basic", subscription.Plan)
	}
	if subscription.Status != entities.StatusPastDue {
		t.Fatalf("status = %q, want past_due", subscription.Status)
	}
}

func TestIsTenantAllowed(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name         string
		subscription *entities.Subscription
		want         bool
	}{
		{name: "unknown tenant", subscription: nil, want: false},
		{
			name:         "active without end",
			subscription: &entities.Subscription{ID: "s", TenantID: "tenant-1", Status: entities.StatusActive},
			want:         true,
		},
		{
			name:         "trial counts as active",
			subscription: &entities.Subscription{ID: "s", TenantID: "tenant-1", Status: entities.StatusTrial, EndAt: &future},
			want:         true,
		},
		{
			name:         "active but expired",
			subscription: &entities.Subscription{ID: "s", TenantID: "tenant-1", Status: entities.StatusActive, EndAt: &past},
			want:         false,
		},
		{
			name:         "suspended",
			subscription: &entities.Subscription{ID: "s", TenantID: "tenant-1", Status: entities.StatusSuspended},
			want:         false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memoryadapter.NewStore()
			if tc.subscription != nil {
				store.Seed(*tc.subscription)
			}
			service := newService(store, &recordingNotifier{}, now)

			allowed, err := service.IsTenantAllowed(context.Background(), "tenant-1")
			if err != nil {
				t.Fatalf("IsTenantAllowed: %v", err)
			}
			if allowed != tc.want {
				t.Fatalf("allowed = %v, want %v", allowed, tc.want)
			}
		})
	}
}
