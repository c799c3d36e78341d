package subscriptionservice

import (
	"log/slog"

	"meridian/contexts/tenant-edge/subscription-service/application"
	"meridian/contexts/tenant-edge/subscription-service/ports"
)

// Module is the composition surface for tenant subscription state.
type Module struct {
	Service application.Service
}

type Dependencies struct {
	Repo        ports.Repository
	Notifier    ports.EdgeNotifier
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:        deps.Repo,
			Notifier:    deps.Notifier,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Logger:      deps.Logger,
		},
	}
}
