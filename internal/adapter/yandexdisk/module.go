package yandexdisk

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
)

// Module exposes the Disk client to the fx graph. The client is nil when no
// token is configured and direct links are then reported as unsupported.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.YandexDiskToken == "" {
		return nil, nil
	}
	return NewHTTPClient(p.Config.YandexDiskAPI, p.Config.YandexDiskToken, p.Config.ExternalCallTimeout, p.Logger)
}
