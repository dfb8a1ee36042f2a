package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/adapter/remote"
	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/domain/repository"
	"github.com/polkiloo/printshop/internal/metrics"
	"github.com/polkiloo/printshop/internal/preview"
	"github.com/polkiloo/printshop/internal/worker"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newPreviewUseCase,
	newOrderUseCase,
	newDesignUseCase,
)

type params struct {
	fx.In

	Config     *config.Config
	Orders     repository.OrderRepository
	Designs    repository.DesignRepository
	Backend    remote.Backend
	Cache      *preview.Cache
	Generator  *preview.Generator
	Reconciler *worker.Reconciler
	Metrics    *metrics.Registry
	Logger     *slog.Logger
}

func newPreviewUseCase(p params) *PreviewUseCase {
	return NewPreviewUseCase(PreviewConfig{
		Enabled:      p.Config.PreviewEnabled,
		Singleflight: p.Config.PreviewSingleflight,
		StagingDir:   p.Config.UploadDir,
	}, PreviewDeps{
		Orders:    p.Orders,
		Designs:   p.Designs,
		Storage:   p.Backend,
		Cache:     p.Cache,
		Converter: p.Generator,
		Scheduler: p.Reconciler,
		Metrics:   p.Metrics,
		Logger:    p.Logger,
	})
}

func newOrderUseCase(p params) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Designs, p.Backend, p.Config.UploadDir, p.Logger)
}

func newDesignUseCase(p params) *DesignUseCase {
	return NewDesignUseCase(p.Orders, p.Designs, p.Backend, p.Cache, p.Generator, p.Config.UploadDir, p.Logger)
}
