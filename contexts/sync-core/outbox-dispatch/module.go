package outboxdispatch

import (
	"log/slog"
	"time"

	"meridian/contexts/sync-core/outbox-dispatch/application/workers"
	"meridian/contexts/sync-core/outbox-dispatch/ports"
)

// Module is the composition surface for the outbox delivery worker.
type Module struct {
	Dispatcher workers.Dispatcher
}

type Dependencies struct {
	Ledger        ports.Ledger
	Publisher     ports.EventPublisher
	Notifier      ports.LocalNotifier
	Groups        ports.GroupBroadcaster
	Clock         ports.Clock
	Sleeper       ports.Sleeper
	SourceService string
	IdleDelay     time.Duration
	FaultDelay    time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Dispatcher: workers.Dispatcher{
			Ledger:        deps.Ledger,
			Publisher:     deps.Publisher,
			Notifier:      deps.Notifier,
			Groups:        deps.Groups,
			Clock:         deps.Clock,
			Sleeper:       deps.Sleeper,
			SourceService: deps.SourceService,
			IdleDelay:     deps.IdleDelay,
			FaultDelay:    deps.FaultDelay,
			Logger:        deps.Logger,
		},
	}
}
