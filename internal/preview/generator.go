package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/semaphore"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/pkg/command"
)

// vectorExtensions lists source formats decoded through the external
// rasterizer.
var vectorExtensions = map[string]struct{}{
	".svg":  {},
	".svgz": {},
	".pdf":  {},
	".eps":  {},
	".ai":   {},
}

// GeneratorConfig holds the tunables of a Generator.
type GeneratorConfig struct {
	// RasterizeCommand is the argv of the rasterizer; "{input}" and
	// "{output}" are substituted per call.
	RasterizeCommand []string
	PreviewQuality   int
	PrintQuality     int
	Workers          int
	Timeout          time.Duration
	TempDir          string
}

// Generator turns source artifacts into preview and print renditions.
// Conversions run on their own goroutines, at most Workers at a time.
type Generator struct {
	cfg    GeneratorConfig
	runner command.Runner
	sem    *semaphore.Weighted
	logger *slog.Logger
}

func NewGenerator(cfg GeneratorConfig, runner command.Runner, logger *slog.Logger) *Generator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Generator{
		cfg:    cfg,
		runner: runner,
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
		logger: logger,
	}
}

// Generate encodes source as a WebP preview.
func (g *Generator) Generate(ctx context.Context, source string) ([]byte, error) {
	return g.offload(ctx, source, func(ctx context.Context) ([]byte, error) {
		img, err := g.decode(ctx, source)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, webp.Options{Quality: g.cfg.PreviewQuality}); err != nil {
			return nil, &domainErrors.ConversionError{Source: source, Err: fmt.Errorf("encode webp: %w", err)}
		}
		return buf.Bytes(), nil
	})
}

// ConvertForPrint encodes source as a JPEG suitable for printing.
func (g *Generator) ConvertForPrint(ctx context.Context, source string) ([]byte, error) {
	return g.offload(ctx, source, func(ctx context.Context) ([]byte, error) {
		img, err := g.decode(ctx, source)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(g.cfg.PrintQuality)); err != nil {
			return nil, &domainErrors.ConversionError{Source: source, Err: fmt.Errorf("encode jpeg: %w", err)}
		}
		return buf.Bytes(), nil
	})
}

func (g *Generator) offload(ctx context.Context, source string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, g.contextError(source, err)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer g.sem.Release(1)
		data, err := fn(ctx)
		done <- result{data: data, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, g.contextError(source, ctx.Err())
		}
		return r.data, r.err
	case <-ctx.Done():
		return nil, g.contextError(source, ctx.Err())
	}
}

func (g *Generator) contextError(source string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = domainErrors.ErrTimeout
	}
	return &domainErrors.ConversionError{Source: source, Err: err}
}

func (g *Generator) decode(ctx context.Context, source string) (image.Image, error) {
	input := source
	if NeedsRasterization(source) {
		raster, err := g.rasterize(ctx, source)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := os.Remove(raster); err != nil && !os.IsNotExist(err) {
				g.logger.Warn("failed to remove raster temp file", slog.String("path", raster), slog.Any("error", err))
			}
		}()
		input = raster
	}

	img, err := imaging.Open(input, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &domainErrors.ConversionError{Source: source, Err: err}
	}
	return img, nil
}

// rasterize runs the external rasterizer and returns the path of the PNG it
// produced. The temp file is removed here on failure and by the caller
// otherwise.
func (g *Generator) rasterize(ctx context.Context, source string) (string, error) {
	if len(g.cfg.RasterizeCommand) == 0 {
		return "", &domainErrors.ConversionError{Source: source, Err: errors.New("rasterize command is not configured")}
	}

	tmp, err := os.CreateTemp(g.cfg.TempDir, "raster-*.png")
	if err != nil {
		return "", &domainErrors.ConversionError{Source: source, Err: fmt.Errorf("create raster temp file: %w", err)}
	}
	output := tmp.Name()
	_ = tmp.Close()

	args := make([]string, 0, len(g.cfg.RasterizeCommand)-1)
	for _, arg := range g.cfg.RasterizeCommand[1:] {
		arg = strings.ReplaceAll(arg, "{input}", source)
		arg = strings.ReplaceAll(arg, "{output}", output)
		args = append(args, arg)
	}

	stdout, stderr, err := g.runner.Run(ctx, g.cfg.RasterizeCommand[0], args...)
	if err == nil {
		if info, statErr := os.Stat(output); statErr != nil || info.Size() == 0 {
			err = errors.New("rasterizer produced no output")
		}
	}
	if err != nil {
		_ = os.Remove(output)
		if ctx.Err() != nil {
			return "", g.contextError(source, ctx.Err())
		}
		return "", &domainErrors.ConversionError{
			Source:     source,
			Diagnostic: command.Diagnostic(stdout, stderr),
			Err:        fmt.Errorf("rasterize: %w", err),
		}
	}
	return output, nil
}

// NeedsRasterization reports whether path is a vector format.
func NeedsRasterization(path string) bool {
	_, ok := vectorExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
