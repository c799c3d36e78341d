package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	entitysync "meridian/contexts/sync-core/entity-sync"
	synccloud "meridian/contexts/sync-core/entity-sync/adapters/cloudhttp"
	syncpostgres "meridian/contexts/sync-core/entity-sync/adapters/postgres"
	syncapp "meridian/contexts/sync-core/entity-sync/application"
	syncports "meridian/contexts/sync-core/entity-sync/ports"
	outboxdispatch "meridian/contexts/sync-core/outbox-dispatch"
	outboxpostgres "meridian/contexts/sync-core/outbox-dispatch/adapters/postgres"
	outboxworkers "meridian/contexts/sync-core/outbox-dispatch/application/workers"
	outboxports "meridian/contexts/sync-core/outbox-dispatch/ports"
	pushnotifier "meridian/contexts/tenant-edge/push-notifier"
	nodepostgres "meridian/contexts/tenant-edge/push-notifier/adapters/postgres"
	subscriptionservice "meridian/contexts/tenant-edge/subscription-service"
	subpostgres "meridian/contexts/tenant-edge/subscription-service/adapters/postgres"
	"meridian/internal/platform/config"
	"meridian/internal/platform/db"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/live"
	"meridian/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

// APIApp is the full node process: admin HTTP surface, live notification
// hub, outbox dispatcher and the periodic sync scheduler in one host.
type APIApp struct {
	server       *httpserver.Server
	postgres     *db.Postgres
	dispatcher   outboxworkers.Dispatcher
	engine       *syncapp.Engine
	syncInterval time.Duration
	logger       *slog.Logger
}

// WorkerApp is the headless variant: outbox dispatch and sync without the
// HTTP surface. Run exactly one dispatching process per database.
type WorkerApp struct {
	postgres     *db.Postgres
	dispatcher   outboxworkers.Dispatcher
	engine       *syncapp.Engine
	syncInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	wiring, err := buildWiring(cfg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(
		wiring.sync,
		wiring.nodes,
		wiring.subscriptions,
		wiring.hub,
		wiring.feed,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:       server,
		postgres:     wiring.postgres,
		dispatcher:   wiring.outbox.Dispatcher,
		engine:       wiring.sync.Engine,
		syncInterval: cfg.SyncInterval,
		logger:       logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	wiring, err := buildWiring(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		postgres:     wiring.postgres,
		dispatcher:   wiring.outbox.Dispatcher,
		engine:       wiring.sync.Engine,
		syncInterval: cfg.SyncInterval,
		logger:       logger,
	}, nil
}

// wiring groups everything both processes share.
type wiring struct {
	postgres      *db.Postgres
	hub           *live.Hub
	feed          *live.Feed
	outbox        outboxdispatch.Module
	sync          entitysync.Module
	nodes         pushnotifier.Module
	subscriptions subscriptionservice.Module
}

func buildWiring(cfg config.Config, logger *slog.Logger) (wiring, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return wiring{}, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return wiring{}, err
	}

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		_ = pg.Close()
		return wiring{}, err
	}

	hub := live.NewHub(logger)
	feed := live.NewFeed(logger)

	outboxModule := outboxdispatch.NewModule(outboxdispatch.Dependencies{
		Ledger:        outboxpostgres.NewRepository(pg.DB, logger),
		Publisher:     publisher,
		Notifier:      feed,
		Groups:        hubBroadcaster{hub: hub},
		Clock:         outboxpostgres.SystemClock{},
		Sleeper:       outboxpostgres.CtxSleeper{},
		SourceService: cfg.ServiceName,
		IdleDelay:     cfg.OutboxIdleDelay,
		FaultDelay:    cfg.OutboxFaultDelay,
		Logger:        logger,
	})

	syncModule := entitysync.NewModule(entitysync.Dependencies{
		Stores: []syncports.RecordStore{
			syncpostgres.NewPatientStore(pg.DB, logger),
			syncpostgres.NewInvoiceStore(pg.DB, logger),
			syncpostgres.NewAppUserStore(pg.DB, logger),
			syncpostgres.NewUserProfileStore(pg.DB, logger),
			syncpostgres.NewSubscriptionStore(pg.DB, logger),
		},
		Tenant: syncapp.TenantStores{
			Subscriptions: syncpostgres.NewSubscriptionStore(pg.DB, logger),
			Users:         syncpostgres.NewAppUserStore(pg.DB, logger),
			Profiles:      syncpostgres.NewUserProfileStore(pg.DB, logger),
		},
		Cloud:    synccloud.New(cfg.CloudSyncURL, cfg.CloudSyncTimeout, logger),
		Lookback: cfg.SyncLookback,
		Logger:   logger,
	})

	nodesModule := pushnotifier.NewModule(pushnotifier.Dependencies{
		Nodes:       nodepostgres.NewRepository(pg.DB, logger),
		HTTP:        &http.Client{},
		Clock:       nodepostgres.SystemClock{},
		IDGenerator: nodepostgres.UUIDGenerator{},
		Secrets:     nodepostgres.RandomSecretGenerator{},
		Timeout:     cfg.NotifyTimeout,
		Logger:      logger,
	})

	subscriptionsModule := subscriptionservice.NewModule(subscriptionservice.Dependencies{
		Repo:        subpostgres.NewRepository(pg.DB, logger),
		Notifier:    nodesModule.Notifier,
		Clock:       subpostgres.SystemClock{},
		IDGenerator: subpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	return wiring{
		postgres:      pg,
		hub:           hub,
		feed:          feed,
		outbox:        outboxModule,
		sync:          syncModule,
		nodes:         nodesModule,
		subscriptions: subscriptionsModule,
	}, nil
}

func buildPublisher(cfg config.Config, logger *slog.Logger) (outboxports.EventPublisher, error) {
	if cfg.Publisher == "kafka" {
		return messaging.NewKafka(cfg.KafkaBrokers, cfg.EventTopic, cfg.TopicByEvent, logger)
	}
	return messaging.NewLogPublisher(logger), nil
}

// hubBroadcaster bridges the outbox worker's broadcast port to the live hub.
type hubBroadcaster struct {
	hub *live.Hub
}

func (b hubBroadcaster) Broadcast(ctx context.Context, group string, eventType string, payload json.RawMessage) error {
	return b.hub.Broadcast(ctx, group, live.Notification{
		EventType: eventType,
		Payload:   payload,
		At:        time.Now().UTC(),
	})
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	go a.dispatcher.Run(ctx)
	go runSyncScheduler(ctx, a.engine, a.syncInterval, a.logger)

	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sync_interval", w.syncInterval.String(),
	)

	go w.dispatcher.Run(ctx)
	runSyncScheduler(ctx, w.engine, w.syncInterval, w.logger)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

// runSyncScheduler runs one immediate cycle, then repeats on the configured
// interval until cancelled.
func runSyncScheduler(ctx context.Context, engine *syncapp.Engine, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	engine.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("sync scheduler stopped",
				"event", "sync_scheduler_stopped",
				"module", "internal/app/bootstrap",
				"layer", "platform",
			)
			return
		case <-ticker.C:
			engine.RunOnce(ctx)
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
