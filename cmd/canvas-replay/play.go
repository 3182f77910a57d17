package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brain2-canvas/application/actionlog"
	"brain2-canvas/application/commands"
	"brain2-canvas/application/ports"
	"brain2-canvas/application/queries"
	querybus "brain2-canvas/application/queries/bus"
	"brain2-canvas/infrastructure/di"
	"brain2-canvas/interfaces/script"
)

type playOptions struct {
	confirm bool
	save    bool
	serve   bool
}

func newPlayCmd(opts *options) *cobra.Command {
	po := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play SCRIPT...",
		Short: "Play gesture scripts in order against the project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts, po, args)
		},
	}

	cmd.Flags().BoolVar(&po.confirm, "confirm", true, "answer yes to delete and merge confirmations")
	cmd.Flags().BoolVar(&po.save, "save", true, "save the project after the last script")
	cmd.Flags().BoolVar(&po.serve, "serve", false, "keep serving the HTTP surface until interrupted")
	return cmd
}

func runPlay(cmd *cobra.Command, opts *options, po *playOptions, paths []string) error {
	scripts := make([]*script.Script, 0, len(paths))
	for _, path := range paths {
		s, err := script.Load(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, s)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, cleanup, err := di.InitializeContainer(ctx, opts.cfg, di.Frontend{
		Confirmer:  ports.StaticConfirmer(po.confirm),
		Notifier:   logNotifier{},
		LogOptions: []actionlog.Option{actionlog.WithRunner(actionlog.SyncRunner)},
	})
	if err != nil {
		return err
	}
	defer cleanup()
	defer container.Shutdown()
	defer zap.ReplaceGlobals(container.Logger)()

	logger := container.Logger.Named("replay")
	player := script.NewPlayer(container.Engine, container.CommandBus, container.QueryBus, logger)

	results := make([]*script.Result, 0, len(scripts))
	for _, s := range scripts {
		result, err := player.Play(ctx, s)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if po.save {
		if err := container.CommandBus.Send(ctx, &commands.SaveProjectCommand{}); err != nil {
			return err
		}
	}

	status, err := querybus.AskFor[*queries.SaveStatusResult](ctx, container.QueryBus, queries.GetSaveStatusQuery{})
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), struct {
		Project string           `json:"project"`
		Scripts []*script.Result `json:"scripts"`
		Status  interface{}      `json:"status"`
	}{opts.cfg.ProjectID, results, status}); err != nil {
		return err
	}

	if !po.serve {
		return nil
	}
	return serve(ctx, opts.cfg.MetricsAddress, container.HTTP, logger)
}

// serve runs the HTTP surface until ctx is cancelled
func serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logNotifier routes user-visible messages to the global logger
type logNotifier struct{}

func (logNotifier) Notify(level ports.NotificationLevel, message string) {
	logger := zap.L().Named("notify")
	switch level {
	case ports.NotifyError:
		logger.Error(message)
	case ports.NotifyWarning:
		logger.Warn(message)
	default:
		logger.Info(message)
	}
}
