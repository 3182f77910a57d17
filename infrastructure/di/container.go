package di

import (
	"net/http"

	"go.uber.org/zap"

	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/interaction"
	querybus "brain2-canvas/application/queries/bus"
	domainconfig "brain2-canvas/domain/config"
	"brain2-canvas/infrastructure/config"
	"brain2-canvas/infrastructure/observability"
	"brain2-canvas/infrastructure/persistence/resilient"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	Metrics           *observability.Collector
	InteractionConfig *domainconfig.Holder
	Watcher           *config.Watcher
	Persistence       *resilient.Store
	Engine            *interaction.Engine
	CommandBus        *bus.CommandBus
	QueryBus          *querybus.QueryBus
	HTTP              http.Handler
}

// Shutdown waits for in-flight saves and flushes the logger
func (c *Container) Shutdown() {
	c.Engine.Flush()
	if err := c.Logger.Sync(); err != nil {
		c.Logger.Debug("Logger sync failed", zap.Error(err))
	}
}
