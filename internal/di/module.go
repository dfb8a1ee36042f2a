package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/adapter/remote"
	"github.com/polkiloo/printshop/internal/adapter/yandexdisk"
	"github.com/polkiloo/printshop/internal/app"
	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/logger"
	"github.com/polkiloo/printshop/internal/metrics"
	"github.com/polkiloo/printshop/internal/pkg/command"
	"github.com/polkiloo/printshop/internal/preview"
	"github.com/polkiloo/printshop/internal/server/http/router"
	"github.com/polkiloo/printshop/internal/storage/postgres"
	"github.com/polkiloo/printshop/internal/telemetry"
	"github.com/polkiloo/printshop/internal/usecase"
	"github.com/polkiloo/printshop/internal/worker"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		postgres.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		fx.Provide(func() command.Runner { return command.ExecRunner{} }),
		yandexdisk.Module,
		remote.Module,
		preview.Module,
		worker.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
