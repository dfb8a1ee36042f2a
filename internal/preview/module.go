package preview

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/pkg/command"
)

// Module provides the preview cache and generator.
var Module = fx.Options(
	fx.Provide(newCache),
	fx.Provide(newGenerator),
)

func newCache(cfg *config.Config, logger *slog.Logger) (*Cache, error) {
	return NewCache(cfg.CacheOriginalDir, cfg.CacheDesignDir, cfg.CacheTTL, logger)
}

type generatorParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Runner command.Runner `optional:"true"`
}

func newGenerator(p generatorParams) *Generator {
	return NewGenerator(GeneratorConfig{
		RasterizeCommand: p.Config.RasterizeCommand,
		PreviewQuality:   p.Config.PreviewQuality,
		PrintQuality:     p.Config.PrintQuality,
		Workers:          p.Config.ConversionWorkers,
		Timeout:          p.Config.ExternalCallTimeout,
		TempDir:          p.Config.UploadDir,
	}, p.Runner, p.Logger)
}
