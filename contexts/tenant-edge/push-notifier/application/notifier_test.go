package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"meridian/contexts/tenant-edge/push-notifier/adapters/memory"
	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
)

type capturedDelivery struct {
	body      []byte
	signature string
}

// captureServer records webhook deliveries for signature assertions.
func captureServer(t *testing.T, status int) (*httptest.Server, func() []capturedDelivery) {
	t.Helper()
	var mu sync.Mutex
	var deliveries []capturedDelivery

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		mu.Lock()
		deliveries = append(deliveries, capturedDelivery{
			body:      body,
			signature: r.Header.Get(SignatureHeader),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []capturedDelivery {
		mu.Lock()
		defer mu.Unlock()
		out := make([]capturedDelivery, len(deliveries))
		copy(out, deliveries)
		return out
	}
}

func seedNode(t *testing.T, store *memory.Store, nodeID, tenantID, callbackURL, secret string, active bool) {
	t.Helper()
	node, err := entities.NewTenantNode(nodeID, tenantID, callbackURL, nodeID, secret, time.Now())
	if err != nil {
		t.Fatalf("node %s: %v", nodeID, err)
	}
	node.IsActive = active
	if err := store.Create(context.Background(), node); err != nil {
		t.Fatalf("create %s: %v", nodeID, err)
	}
}

func TestNotifySignsBodyWithNodeSecret(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("node-secret-key"))
	server, deliveries := captureServer(t, http.StatusOK)

	store := memory.NewStore()
	seedNode(t, store, "node-1", "t1", server.URL, secret, true)

	notifier := Notifier{Nodes: store, HTTP: http.DefaultClient}
	payload := map[string]string{"tenant_id": "t1", "status": "active"}
	if err := notifier.NotifySubscriptionChanged(context.Background(), "t1", payload); err != nil {
		t.Fatalf("notify: %v", err)
	}

	got := deliveries()
	if len(got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(got))
	}

	wantBody, _ := json.Marshal(payload)
	if string(got[0].body) != string(wantBody) {
		t.Fatalf("body = %s, want %s", got[0].body, wantBody)
	}

	key, _ := base64.StdEncoding.DecodeString(secret)
	mac := hmac.New(sha256.New, key)
	mac.Write(wantBody)
	wantSignature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if got[0].signature != wantSignature {
		t.Fatalf("signature = %q, want %q", got[0].signature, wantSignature)
	}
}

func TestNotifyContinuesPastFailingNode(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead.Close()
	healthy, deliveries := captureServer(t, http.StatusOK)

	secret := base64.StdEncoding.EncodeToString([]byte("k"))
	store := memory.NewStore()
	seedNode(t, store, "node-dead", "t1", dead.URL, secret, true)
	seedNode(t, store, "node-ok", "t1", healthy.URL, secret, true)

	notifier := Notifier{Nodes: store, HTTP: http.DefaultClient, Timeout: time.Second}
	if err := notifier.NotifySubscriptionChanged(context.Background(), "t1", map[string]string{"status": "suspended"}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if got := deliveries(); len(got) != 1 {
		t.Fatalf("healthy node deliveries = %d, want 1", len(got))
	}
}

func TestNotifySkipsInactiveAndForeignNodes(t *testing.T) {
	server, deliveries := captureServer(t, http.StatusOK)
	secret := base64.StdEncoding.EncodeToString([]byte("k"))

	store := memory.NewStore()
	seedNode(t, store, "node-inactive", "t1", server.URL, secret, false)
	seedNode(t, store, "node-foreign", "t2", server.URL, secret, true)

	notifier := Notifier{Nodes: store, HTTP: http.DefaultClient}
	if err := notifier.NotifySubscriptionChanged(context.Background(), "t1", map[string]string{"status": "active"}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if got := deliveries(); len(got) != 0 {
		t.Fatalf("deliveries = %d, want none", len(got))
	}
}
