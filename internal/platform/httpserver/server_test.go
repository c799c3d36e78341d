package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	entitysync "meridian/contexts/sync-core/entity-sync"
	pushnotifier "meridian/contexts/tenant-edge/push-notifier"
	nodememory "meridian/contexts/tenant-edge/push-notifier/adapters/memory"
	subscriptionservice "meridian/contexts/tenant-edge/subscription-service"
	submemory "meridian/contexts/tenant-edge/subscription-service/adapters/memory"
	"meridian/internal/platform/live"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type staticIDs struct {
	prefix string
	next   int
}

func (g *staticIDs) NewID() string {
	g.next++
	return g.prefix
}

type staticNodeIDs struct{}

func (staticNodeIDs) NewID(context.Context) (string, error) {
	return "node-1", nil
}

type staticSecrets struct{}

func (staticSecrets) NewSecret(context.Context) (string, error) {
	return "plain-secret", nil
}

func newTestServer(t *testing.T) (*Server, *live.Feed) {
	t.Helper()

	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	hub := live.NewHub(nil)
	feed := live.NewFeed(nil)

	syncModule := entitysync.NewModule(entitysync.Dependencies{})
	nodesModule := pushnotifier.NewModule(pushnotifier.Dependencies{
		Nodes:       nodememory.NewStore(),
		HTTP:        http.DefaultClient,
		Clock:       fixedClock{now: now},
		IDGenerator: staticNodeIDs{},
		Secrets:     staticSecrets{},
	})
	subscriptionsModule := subscriptionservice.NewModule(subscriptionservice.Dependencies{
		Repo:        submemory.NewStore(),
		Clock:       fixedClock{now: now},
		IDGenerator: &staticIDs{prefix: "sub-1"},
	})

	return New(syncModule, nodesModule, subscriptionsModule, hub, feed, nil, ""), feed
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestForceSyncAccepted(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodPost, "/sync/force", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestForceTenantSyncAccepted(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodPost, "/tenants/t1/sync/force", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}

func TestSyncStatusBeforeFirstRun(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodGet, "/sync/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		HasRun bool `json:"has_run"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.HasRun {
		t.Fatal("has_run = true before any run")
	}
}

func TestNodeRegistrationFlow(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/tenants/t1/nodes",
		`{"name":"clinic edge","callback_url":"https://edge.example/hook"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Node struct {
			ID       string `json:"id"`
			TenantID string `json:"tenant_id"`
			IsActive bool   `json:"is_active"`
		} `json:"node"`
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Secret != "plain-secret" || created.Node.ID != "node-1" || !created.Node.IsActive {
		t.Fatalf("created = %+v", created)
	}

	rec = doJSON(t, server, http.MethodGet, "/tenants/t1/nodes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "plain-secret") {
		t.Fatal("node listing leaked the secret")
	}

	rec = doJSON(t, server, http.MethodPost, "/tenants/t1/nodes/node-1/rotate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("rotate status = %d", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPost, "/tenants/t1/nodes/missing/rotate", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("rotate missing status = %d, want 404", rec.Code)
	}
}

func TestNodeRegistrationRejectsBadURL(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodPost, "/tenants/t1/nodes",
		`{"name":"bad","callback_url":"ftp://edge.example"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubscriptionLifecycleOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/tenants/t1/subscription", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get before create = %d, want 404", rec.Code)
	}

	rec = doJSON(t, server, http.MethodPut, "/tenants/t1/subscription/status",
		`{"plan":"clinic-pro","status":"active"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("change status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, server, http.MethodGet, "/tenants/t1/subscription", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	var subscription struct {
		Status string `json:"status"`
		Plan   string `json:"plan"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &subscription); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if subscription.Status != "active" || subscription.Plan != "clinic-pro" {
		t.Fatalf("subscription = %+v", subscription)
	}

	rec = doJSON(t, server, http.MethodGet, "/tenants/t1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tenant status = %d", rec.Code)
	}
	var status struct {
		Allowed bool `json:"allowed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Allowed {
		t.Fatal("tenant with active subscription must be allowed")
	}

	rec = doJSON(t, server, http.MethodPut, "/tenants/t1/subscription/status", `{"status":"nonsense"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d, want 400", rec.Code)
	}
}

func TestRecentNotificationsReflectFeed(t *testing.T) {
	server, feed := newTestServer(t)
	if err := feed.Notify(context.Background(), "LabResultReady", json.RawMessage(`{"patient_id":"p1"}`)); err != nil {
		t.Fatalf("notify: %v", err)
	}

	rec := doJSON(t, server, http.MethodGet, "/notifications/recent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Notifications []struct {
			EventType string `json:"event_type"`
		} `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].EventType != "LabResultReady" {
		t.Fatalf("notifications = %+v", body.Notifications)
	}
}
