package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	domainerrors "meridian/contexts/sync-core/entity-sync/domain/errors"
	"meridian/contexts/sync-core/entity-sync/ports"
)

const defaultLookback = time.Hour

// TenantStores groups the stores used by the tenant-scoped sync variant.
type TenantStores struct {
	Subscriptions ports.RecordStore
	Users         ports.TenantRecordStore
	Profiles      ports.TenantRecordStore
}

// Engine orchestrates push/pull cycles across registered entity stores.
// Cycles run concurrently per entity type; within a cycle push strictly
// precedes pull. The pull window is a fixed look-back, not a watermark, so
// the merge must stay idempotent.
type Engine struct {
	Stores   []ports.RecordStore
	Tenant   TenantStores
	Cloud    ports.CloudClient
	Clock    ports.Clock
	Lookback time.Duration
	Logger   *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// RunOnce synchronizes every registered entity type. One type's failure
// never aborts the others.
func (e *Engine) RunOnce(ctx context.Context) {
	logger := ResolveLogger(e.Logger)

	var wg sync.WaitGroup
	for _, store := range e.Stores {
		wg.Add(1)
		go func(store ports.RecordStore) {
			defer wg.Done()
			e.syncEntity(ctx, logger, store, "")
		}(store)
	}
	wg.Wait()

	e.mu.Lock()
	e.lastRun = e.now()
	e.mu.Unlock()

	logger.Info("sync run completed",
		"event", "entity_sync_run_completed",
		"module", "sync-core/entity-sync",
		"layer", "application",
		"entity_count", len(e.Stores),
	)
}

// RunOnceTenant performs the narrower tenant-scoped variant: merge the
// tenant's subscription, push the tenant's unsynced users, and pull
// authoritative user and profile records filtered to the tenant.
func (e *Engine) RunOnceTenant(ctx context.Context, tenantID string) {
	logger := ResolveLogger(e.Logger)

	if e.Tenant.Subscriptions != nil {
		e.pullForTenant(ctx, logger, e.Tenant.Subscriptions, tenantID)
	}
	if e.Tenant.Users != nil {
		e.pushForTenant(ctx, logger, e.Tenant.Users, tenantID)
		e.pullForTenant(ctx, logger, e.Tenant.Users, tenantID)
	}
	if e.Tenant.Profiles != nil {
		e.pullForTenant(ctx, logger, e.Tenant.Profiles, tenantID)
	}

	logger.Info("tenant sync run completed",
		"event", "entity_sync_tenant_run_completed",
		"module", "sync-core/entity-sync",
		"layer", "application",
		"tenant_id", tenantID,
	)
}

// Trigger schedules an asynchronous RunOnce without blocking the caller.
// Failures are observable only through logs.
func (e *Engine) Trigger() {
	go e.RunOnce(context.Background())
}

// LastRun reports when the most recent full run finished, for the
// administrative status endpoint.
func (e *Engine) LastRun() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRun, !e.lastRun.IsZero()
}

func (e *Engine) syncEntity(ctx context.Context, logger *slog.Logger, store ports.RecordStore, tenantID string) {
	if !e.push(ctx, logger, store, nil) {
		return
	}
	e.pull(ctx, logger, store, tenantID)
}

func (e *Engine) pushForTenant(ctx context.Context, logger *slog.Logger, store ports.TenantRecordStore, tenantID string) {
	list := func(ctx context.Context) ([]ports.Record, error) {
		return store.ListUnsyncedForTenant(ctx, tenantID)
	}
	e.push(ctx, logger, store, list)
}

func (e *Engine) pullForTenant(ctx context.Context, logger *slog.Logger, store ports.RecordStore, tenantID string) {
	e.pull(ctx, logger, store, tenantID)
}

// push sends all unsynced records as one batch. The batch is all-or-nothing:
// a transport failure marks nothing synced and the same records are retried
// verbatim next cycle.
func (e *Engine) push(ctx context.Context, logger *slog.Logger, store ports.RecordStore, list func(context.Context) ([]ports.Record, error)) bool {
	if list == nil {
		list = store.ListUnsynced
	}

	records, err := list(ctx)
	if err != nil {
		logger.Error("sync push listing failed",
			"event", "entity_sync_push_list_failed",
			"module", "sync-core/entity-sync",
			"layer", "application",
			"entity", store.EntityName(),
			"error", err.Error(),
		)
		return false
	}
	if len(records) == 0 {
		return true
	}

	payloads := make([]json.RawMessage, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, record.Payload)
		ids = append(ids, record.ID)
	}

	if err := e.Cloud.Push(ctx, store.EntityName(), payloads); err != nil {
		logger.Error("sync push failed",
			"event", "entity_sync_push_failed",
			"module", "sync-core/entity-sync",
			"layer", "application",
			"entity", store.EntityName(),
			"record_count", len(records),
			"error", err.Error(),
		)
		return false
	}

	if err := store.MarkSynced(ctx, ids, e.now().Unix()); err != nil {
		logger.Warn("sync mark synced failed",
			"event", "entity_sync_mark_failed",
			"module", "sync-core/entity-sync",
			"layer", "application",
			"entity", store.EntityName(),
			"error", err.Error(),
		)
	}
	return true
}

// pull fetches remote changes within the look-back window and merges them
// with last-writer-wins. When tenantID is set, records for other tenants are
// ignored. Unparseable records are skipped, never fatal to the cycle.
func (e *Engine) pull(ctx context.Context, logger *slog.Logger, store ports.RecordStore, tenantID string) {
	since := e.now().Add(-e.lookback())
	pulled, err := e.Cloud.Pull(ctx, store.EntityName(), since)
	if err != nil {
		logger.Error("sync pull failed",
			"event", "entity_sync_pull_failed",
			"module", "sync-core/entity-sync",
			"layer", "application",
			"entity", store.EntityName(),
			"error", err.Error(),
		)
		return
	}

	for _, raw := range pulled {
		if err := e.applyRemote(ctx, store, raw, tenantID); err != nil {
			logger.Warn("applying pulled record failed",
				"event", "entity_sync_apply_failed",
				"module", "sync-core/entity-sync",
				"layer", "application",
				"entity", store.EntityName(),
				"error", err.Error(),
			)
		}
	}
}

// applyRemote implements the merge rule: insert when absent; overwrite all
// local fields iff the remote timestamp is present and the local one is
// absent or older. Re-applying an identical record changes nothing.
func (e *Engine) applyRemote(ctx context.Context, store ports.RecordStore, raw json.RawMessage, tenantID string) error {
	var head struct {
		ID        string     `json:"id"`
		TenantID  string     `json:"tenant_id"`
		UpdatedAt *time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return err
	}
	if head.ID == "" {
		return domainerrors.ErrMalformedRecord
	}
	if tenantID != "" && head.TenantID != tenantID {
		return nil
	}

	remote := ports.Record{
		ID:        head.ID,
		TenantID:  head.TenantID,
		UpdatedAt: head.UpdatedAt,
		Payload:   raw,
	}

	local, ok, err := store.Get(ctx, remote.ID)
	if err != nil {
		return err
	}
	if !ok {
		return store.Insert(ctx, remote)
	}
	if remote.UpdatedAt == nil {
		return nil
	}
	if local.UpdatedAt == nil || remote.UpdatedAt.After(*local.UpdatedAt) {
		return store.Replace(ctx, remote)
	}
	return nil
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) lookback() time.Duration {
	if e.Lookback > 0 {
		return e.Lookback
	}
	return defaultLookback
}
