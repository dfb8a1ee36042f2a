package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
)

// Module installs the tracer provider for the application lifetime.
var Module = fx.Invoke(registerLifecycle)

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) {
	var shutdown func(context.Context) error

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = Setup(ctx, cfg.OTelEndpoint)
			if err != nil {
				logger.Warn("tracing disabled", slog.Any("error", err))
				return nil
			}
			if cfg.OTelEndpoint != "" {
				logger.Info("tracing enabled", slog.String("endpoint", cfg.OTelEndpoint))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}
