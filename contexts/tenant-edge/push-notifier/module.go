package pushnotifier

import (
	"log/slog"
	"time"

	"meridian/contexts/tenant-edge/push-notifier/application"
	"meridian/contexts/tenant-edge/push-notifier/ports"
)

// Module is the composition surface for the edge push notifier.
type Module struct {
	Notifier application.Notifier
	Registry application.Registry
}

type Dependencies struct {
	Nodes       ports.NodeRepository
	HTTP        ports.HTTPDoer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Secrets     ports.SecretGenerator
	Timeout     time.Duration
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Notifier: application.Notifier{
			Nodes:   deps.Nodes,
			HTTP:    deps.HTTP,
			Timeout: deps.Timeout,
			Logger:  deps.Logger,
		},
		Registry: application.Registry{
			Nodes:       deps.Nodes,
			Clock:       deps.Clock,
			IDGenerator: deps.IDGenerator,
			Secrets:     deps.Secrets,
			Logger:      deps.Logger,
		},
	}
}
