package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"meridian/contexts/tenant-edge/push-notifier/adapters/memory"
	domainerrors "meridian/contexts/tenant-edge/push-notifier/domain/errors"
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

func (g *sequenceIDs) NewID(context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("node-%d", g.next), nil
}

type sequenceSecrets struct {
	next int
}

func (g *sequenceSecrets) NewSecret(context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("secret-%d", g.next), nil
}

func newRegistry(store *memory.Store) Registry {
	return Registry{
		Nodes:       store,
		Clock:       fixedClock{now: time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)},
		IDGenerator: &sequenceIDs{},
		Secrets:     &sequenceSecrets{},
	}
}

func TestRegisterNodeReturnsSecretOnce(t *testing.T) {
	store := memory.NewStore()
	registry := newRegistry(store)

	node, secret, err := registry.RegisterNode(context.Background(), "t1", "https://edge.example/hook", "clinic edge")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if secret != "secret-1" {
		t.Fatalf("secret = %q", secret)
	}
	if node.CallbackSecret != "" {
		t.Fatal("returned node must not carry the secret")
	}
	if !node.IsActive {
		t.Fatal("registered node must start active")
	}

	stored, err := store.GetNode(context.Background(), node.NodeID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.CallbackSecret != "secret-1" {
		t.Fatalf("stored secret = %q", stored.CallbackSecret)
	}

	listed, err := registry.ListNodes(context.Background(), "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].CallbackSecret != "" {
		t.Fatalf("listed = %+v, want one node without secret", listed)
	}
}

func TestRegisterNodeRejectsBadCallbackURL(t *testing.T) {
	registry := newRegistry(memory.NewStore())

	_, _, err := registry.RegisterNode(context.Background(), "t1", "ftp://edge.example", "bad")
	if !errors.Is(err, domainerrors.ErrInvalidCallbackURL) {
		t.Fatalf("err = %v, want ErrInvalidCallbackURL", err)
	}
}

func TestRotateSecretReplacesStoredValue(t *testing.T) {
	store := memory.NewStore()
	registry := newRegistry(store)

	node, _, err := registry.RegisterNode(context.Background(), "t1", "https://edge.example/hook", "edge")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	rotated, err := registry.RotateSecret(context.Background(), node.NodeID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated != "secret-2" {
		t.Fatalf("rotated = %q", rotated)
	}

	stored, _ := store.GetNode(context.Background(), node.NodeID)
	if stored.CallbackSecret != "secret-2" {
		t.Fatalf("stored secret = %q, want rotated value", stored.CallbackSecret)
	}
}

func TestRotateSecretUnknownNode(t *testing.T) {
	registry := newRegistry(memory.NewStore())

	_, err := registry.RotateSecret(context.Background(), "missing")
	if !errors.Is(err, domainerrors.ErrNodeNotFound) {
		t.Fatalf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestDeactivateNodeHidesFromActiveList(t *testing.T) {
	store := memory.NewStore()
	registry := newRegistry(store)

	node, _, err := registry.RegisterNode(context.Background(), "t1", "https://edge.example/hook", "edge")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.DeactivateNode(context.Background(), node.NodeID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, _ := store.ListActiveByTenant(context.Background(), "t1")
	if len(active) != 0 {
		t.Fatalf("active = %d, want 0", len(active))
	}
	all, _ := store.ListByTenant(context.Background(), "t1")
	if len(all) != 1 {
		t.Fatalf("all = %d, want deactivated node retained", len(all))
	}
}
