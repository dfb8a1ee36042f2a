package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/domain/repository"
)

// Module provides the PostgreSQL storage, its order and design repositories
// and the session factory used by background reconciliation.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.DesignRepository { return s.Designs() },
		func(s *Storage) repository.Sessions { return s },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	ctx, cancel := context.WithTimeout(p.Ctx, p.Config.ExternalCallTimeout)
	defer cancel()
	return New(ctx, p.Config.DatabaseURI, p.Logger)
}

// registerLifecycle fails startup when the database is unreachable and
// releases the pool on shutdown.
func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("database ping: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			storage.Logger().Info("closing database pool")
			storage.Close()
			return nil
		},
	})
}
