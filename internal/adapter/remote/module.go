package remote

import (
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/adapter/yandexdisk"
	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/pkg/command"
)

// Module exposes the configured storage backend to the fx graph.
var Module = fx.Provide(newBackend)

type backendParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Disk   yandexdisk.Client `optional:"true"`
	Runner command.Runner     `optional:"true"`
}

func newBackend(p backendParams) (Backend, error) {
	cfg := p.Config
	switch cfg.StorageBackend {
	case config.BackendRclone, "":
		return NewRclone(cfg.RcloneBinary, cfg.RcloneRemote, cfg.ExternalCallTimeout, p.Runner, p.Disk, p.Logger), nil
	case config.BackendMinio:
		client, err := NewMinioClient(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return NewMinio(client, cfg.MinioBucket, cfg.ExternalCallTimeout, cfg.PresignExpiry, p.Logger), nil
	case config.BackendSupabase:
		client := NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseKey)
		return NewSupabase(client, cfg.SupabaseBucket, cfg.ExternalCallTimeout, cfg.PresignExpiry, p.Logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
