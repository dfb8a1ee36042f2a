package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/server/http/handlers"
	"github.com/polkiloo/printshop/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewPrintFacade,
		func(f *PrintFacade) handlers.PrintFacade { return f },
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

// Reconciler is the background job pool driven by the application lifecycle.
type Reconciler interface {
	Start(ctx context.Context)
	Stop()
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.Reconciler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	registerHooks(p.Lifecycle, p.Shutdowner, p.Logger, p.Server, p.Worker, p.Config)
}

func registerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *slog.Logger, server *http.Server, reconciler Reconciler, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting printshop",
				slog.String("addr", server.Addr),
				slog.String("storage", cfg.StorageBackend),
				slog.Bool("previews", cfg.PreviewEnabled),
			)
			reconciler.Start(ctx)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.ShutdownTimeout)
			}
			defer cancel()

			err := server.Shutdown(shutdownCtx)
			reconciler.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("printshop stopped")
			return nil
		},
	})
}
