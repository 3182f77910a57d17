package di

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/commands/bus"
	commandhandlers "brain2-canvas/application/commands/handlers"
	"brain2-canvas/application/interaction"
	"brain2-canvas/application/ports"
	querybus "brain2-canvas/application/queries/bus"
	queryhandlers "brain2-canvas/application/queries/handlers"
	domainconfig "brain2-canvas/domain/config"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	"brain2-canvas/infrastructure/config"
	"brain2-canvas/infrastructure/messaging"
	"brain2-canvas/infrastructure/messaging/eventbridge"
	"brain2-canvas/infrastructure/observability"
	"brain2-canvas/infrastructure/persistence/dynamodb"
	"brain2-canvas/infrastructure/persistence/memory"
	"brain2-canvas/infrastructure/persistence/resilient"
	"brain2-canvas/interfaces/http/rest"
	pkgerrors "brain2-canvas/pkg/errors"
)

// Frontend bundles the collaborators supplied by whoever hosts the canvas:
// a UI, the replay CLI or a test.
type Frontend struct {
	Renderer  ports.Renderer
	Palette   ports.Palette
	Confirmer ports.Confirmer
	Notifier  ports.Notifier
	Screen    interaction.ScreenSize
	// LogOptions tune the action log, e.g. a synchronous save runner
	LogOptions []actionlog.Option
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid log level").WithCause(err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ProvideCollector creates the metrics collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector("brain2_canvas")
}

// ProvideInteractionConfig loads the interaction tunables
func ProvideInteractionConfig(cfg *config.Config) (*domainconfig.Holder, error) {
	ic, err := config.LoadInteractionConfig(cfg.Environment, cfg.InteractionConfigPath)
	if err != nil {
		return nil, err
	}
	return domainconfig.NewHolder(ic), nil
}

// ProvideWatcher reloads the interaction config file into the holder. It
// returns nil when no file is configured or watching is disabled.
func ProvideWatcher(cfg *config.Config, holder *domainconfig.Holder, logger *zap.Logger) (*config.Watcher, func(), error) {
	if cfg.InteractionConfigPath == "" || !cfg.WatchInteractionFile {
		return nil, func() {}, nil
	}
	w, err := config.NewWatcher(cfg.Environment, cfg.InteractionConfigPath, logger.Named("config"))
	if err != nil {
		return nil, nil, err
	}
	w.OnChange(holder.Store)
	w.Start()
	return w, w.Stop, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideBackend selects the configured store and, when an event bus is
// configured, mirrors actions to EventBridge.
func ProvideBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.Persistence, error) {
	if cfg.Backend == config.BackendMemory {
		return memory.NewStore(), nil
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, pkgerrors.NewUnavailableError("aws").WithCause(err)
	}

	var backend ports.Persistence = dynamodb.NewStore(
		awsdynamodb.NewFromConfig(awsCfg),
		cfg.DynamoDBTable,
		cfg.ProjectID,
		logger.Named("dynamodb"),
	)
	if cfg.EventBusName != "" {
		publisher := eventbridge.NewPublisher(
			awseventbridge.NewFromConfig(awsCfg),
			cfg.EventBusName,
			cfg.EventSource,
			cfg.ProjectID,
			logger.Named("eventbridge"),
		)
		backend = messaging.NewFanout(backend, logger, publisher)
	}
	return backend, nil
}

// ProvideTracer exports spans over OTLP when tracing is enabled, otherwise
// it hands out the global no-op tracer.
func ProvideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (trace.Tracer, func(), error) {
	if !cfg.EnableTracing {
		return otel.Tracer("brain2-canvas"), func() {}, nil
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "brain2-canvas",
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp.Tracer(), cleanup, nil
}

// ProvidePersistence wraps the backend with the breaker, tracing and metrics
func ProvidePersistence(backend ports.Persistence, cfg *config.Config, tracer trace.Tracer, collector *observability.Collector, logger *zap.Logger) *resilient.Store {
	return resilient.New(backend, resilient.Settings{
		Name:        "persistence",
		Backend:     cfg.Backend,
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerTimeout,
		CallTimeout: cfg.SaveTimeout,
		Tracer:      tracer,
		Recorder:    collector,
		Logger:      logger.Named("persistence"),
	})
}

// ProvideEngine opens the configured project, or starts an empty one when
// nothing was saved yet, and builds its interaction engine.
func ProvideEngine(
	ctx context.Context,
	cfg *config.Config,
	store *resilient.Store,
	holder *domainconfig.Holder,
	frontend Frontend,
	collector *observability.Collector,
	logger *zap.Logger,
) (*interaction.Engine, error) {
	snap, err := store.LoadProject(ctx, cfg.ProjectID)
	switch {
	case pkgerrors.IsNotFound(err):
		snap = aggregates.GraphSnapshot{ID: cfg.ProjectID, Name: cfg.ProjectName}
		logger.Info("Starting new project", zap.String("projectID", cfg.ProjectID))
	case err != nil:
		return nil, err
	default:
		logger.Info("Loaded project",
			zap.String("projectID", cfg.ProjectID),
			zap.Int("nodeCount", len(snap.Nodes)),
			zap.Int("linkCount", len(snap.Links)))
	}

	graph, err := aggregates.RestoreGraph(snap)
	if err != nil {
		return nil, err
	}

	screen := frontend.Screen
	if screen.Width <= 0 || screen.Height <= 0 {
		screen = interaction.ScreenSize{Width: 800, Height: 600}
	}
	viewport, err := valueobjects.NewViewport(0, 0, screen.Width, screen.Height)
	if err != nil {
		return nil, err
	}
	if v := snap.Viewport; v != nil {
		if restored, err := valueobjects.NewViewport(v.Left, v.Top, v.Width, v.Height); err == nil {
			viewport = restored
		}
	}

	return interaction.NewEngine(graph, viewport, screen, interaction.Dependencies{
		Renderer:    frontend.Renderer,
		Persistence: store,
		Palette:     frontend.Palette,
		Confirmer:   frontend.Confirmer,
		Notifier:    frontend.Notifier,
		Config:      holder,
		Logger:      logger,
		Metrics:     collector,
		LogMetrics:  collector,
		LogOptions:  append([]actionlog.Option{actionlog.WithRevision(snap.Revision)}, frontend.LogOptions...),
	})
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(engine *interaction.Engine, collector *observability.Collector, logger *zap.Logger) (*bus.CommandBus, error) {
	b := bus.NewCommandBus(
		bus.LoggingMiddleware(logger.Named("commands")),
		bus.MetricsMiddleware(collector),
	)
	if err := commandhandlers.RegisterAll(b, engine, logger); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(engine *interaction.Engine, collector *observability.Collector) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus(querybus.NewMetricsMiddleware(collector))
	if err := queryhandlers.RegisterAll(b, engine); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideHTTPHandler builds the operator HTTP surface. Readiness follows
// the persistence breaker.
func ProvideHTTPHandler(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	store *resilient.Store,
	collector *observability.Collector,
	logger *zap.Logger,
) http.Handler {
	opts := []rest.Option{
		rest.WithDebugErrors(cfg.Environment == "development"),
		rest.WithReadiness(func(context.Context) error {
			if store.State() == gobreaker.StateOpen {
				return pkgerrors.NewUnavailableError("persistence")
			}
			return nil
		}),
	}
	if cfg.EnableMetrics {
		opts = append(opts, rest.WithMetrics(collector.Handler()))
	}
	return rest.NewRouter(commandBus, queryBus, logger.Named("http"), opts...).Setup()
}
