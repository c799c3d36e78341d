package cloudhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "meridian/contexts/sync-core/entity-sync/domain/errors"
)

// retrySchedule is the fixed delay sequence between attempts: an initial
// attempt plus one retry per entry.
var retrySchedule = []time.Duration{time.Second, 3 * time.Second, 7 * time.Second}

// Client talks to the central sync endpoint. Retries happen only on
// network-level failures, 5xx responses and 408; any other 4xx is a
// permanent data or contract problem and is surfaced immediately. With no
// base URL configured both operations are no-ops, which supports
// central-only deployments.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Push(ctx context.Context, entityName string, records []json.RawMessage) error {
	if c.baseURL == "" {
		return nil
	}

	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode push batch: %w", err)
	}

	endpoint := c.baseURL + "/sync/push/" + url.PathEscape(entityName)
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("push %s: %w", entityName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push %s: status %d: %s: %w",
			entityName, resp.StatusCode, safeRead(resp.Body), domainerrors.ErrRemoteRejected)
	}
	return nil
}

func (c *Client) Pull(ctx context.Context, entityName string, since time.Time) ([]json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	endpoint := c.baseURL + "/sync/pull/" + url.PathEscape(entityName)
	if !since.IsZero() {
		endpoint += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		// Pull failure must not block push or other entity types.
		c.logger.Warn("sync pull gave up",
			"event", "cloud_sync_pull_exhausted",
			"module", "sync-core/entity-sync",
			"layer", "adapter",
			"entity", entityName,
			"error", err.Error(),
		)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("sync pull rejected",
			"event", "cloud_sync_pull_rejected",
			"module", "sync-core/entity-sync",
			"layer", "adapter",
			"entity", entityName,
			"status", resp.StatusCode,
		)
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("pull %s: decode response: %w", entityName, err)
	}
	return records, nil
}

// do runs the request through the retry schedule. The request is rebuilt per
// attempt so body readers start fresh.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	attempts := len(retrySchedule) + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, retrySchedule[attempt-1]); err != nil {
				return nil, err
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, safeRead(resp.Body))
			resp.Body.Close()
			continue
		}
		return resp, nil
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func safeRead(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(raw))
}
