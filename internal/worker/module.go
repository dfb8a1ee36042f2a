package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/adapter/remote"
	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/domain/repository"
	"github.com/polkiloo/printshop/internal/metrics"
)

// Module provides the reconciliation worker pool. Its lifecycle is driven by
// the application module.
var Module = fx.Provide(newReconciler)

type reconcilerParams struct {
	fx.In

	Backend  remote.Backend
	Sessions repository.Sessions
	Metrics  *metrics.Registry
	Config   *config.Config
	Logger   *slog.Logger
}

func newReconciler(p reconcilerParams) *Reconciler {
	return NewReconciler(
		p.Backend,
		p.Sessions,
		p.Metrics,
		p.Config.ReconcileWorkers,
		p.Config.ReconcileQueueSize,
		p.Config.ExternalCallTimeout,
		p.Logger,
	)
}
