package application

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"meridian/contexts/tenant-edge/push-notifier/domain/entities"
	"meridian/contexts/tenant-edge/push-notifier/ports"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body, keyed
// with the node's registered secret, so edge nodes can authenticate the
// central authority.
const SignatureHeader = "X-Central-Signature"

// Notifier fans a tenant event out to every active registered edge node.
// Delivery is best-effort: a failing node is logged and the rest still
// receive the event.
type Notifier struct {
	Nodes   ports.NodeRepository
	HTTP    ports.HTTPDoer
	Timeout time.Duration
	Logger  *slog.Logger
}

func (n Notifier) NotifySubscriptionChanged(ctx context.Context, tenantID string, payload any) error {
	logger := ResolveLogger(n.Logger)

	nodes, err := n.Nodes.ListActiveByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		n.deliver(ctx, logger, node, body)
	}
	return nil
}

func (n Notifier) deliver(ctx context.Context, logger *slog.Logger, node entities.TenantNode, body []byte) {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, node.CallbackURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("push request build failed",
			"event", "tenant_push_request_failed",
			"module", "tenant-edge/push-notifier",
			"layer", "application",
			"node", node.CallbackURL,
			"error", err.Error(),
		)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	if node.CallbackSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(node.CallbackSecret)
		if err != nil {
			logger.Warn("invalid callback secret for node",
				"event", "tenant_push_bad_secret",
				"module", "tenant-edge/push-notifier",
				"layer", "application",
				"node", node.CallbackURL,
				"error", err.Error(),
			)
		} else {
			mac := hmac.New(sha256.New, secret)
			mac.Write(body)
			req.Header.Set(SignatureHeader, base64.StdEncoding.EncodeToString(mac.Sum(nil)))
		}
	}

	resp, err := n.HTTP.Do(req)
	if err != nil {
		logger.Warn("push to node failed",
			"event", "tenant_push_delivery_failed",
			"module", "tenant-edge/push-notifier",
			"layer", "application",
			"node", node.CallbackURL,
			"error", err.Error(),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("push to node returned non-success",
			"event", "tenant_push_rejected",
			"module", "tenant-edge/push-notifier",
			"layer", "application",
			"node", node.CallbackURL,
			"status", resp.StatusCode,
		)
	}
}
