package entitysync

import (
	"log/slog"
	"time"

	"meridian/contexts/sync-core/entity-sync/application"
	"meridian/contexts/sync-core/entity-sync/ports"
)

// Module is the composition surface for the sync engine. Runtime wiring
// consumes Engine; the HTTP layer uses it for force-sync and status.
type Module struct {
	Engine *application.Engine
}

type Dependencies struct {
	Stores   []ports.RecordStore
	Tenant   application.TenantStores
	Cloud    ports.CloudClient
	Clock    ports.Clock
	Lookback time.Duration
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Engine: &application.Engine{
			Stores:   deps.Stores,
			Tenant:   deps.Tenant,
			Cloud:    deps.Cloud,
			Clock:    deps.Clock,
			Lookback: deps.Lookback,
			Logger:   deps.Logger,
		},
	}
}
