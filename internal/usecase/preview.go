package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
	"github.com/polkiloo/printshop/internal/metrics"
)

const tracerName = "github.com/polkiloo/printshop/internal/usecase"

// PreviewConfig is the immutable preview serving configuration.
type PreviewConfig struct {
	Enabled      bool
	Singleflight bool
	StagingDir   string
}

// PreviewUseCase resolves previews through the local cache, the remote
// cache and on-demand generation, in that order.
type PreviewUseCase struct {
	cfg       PreviewConfig
	orders    repository.OrderRepository
	designs   repository.DesignRepository
	storage   Storage
	cache     PreviewCache
	converter Converter
	scheduler Scheduler
	metrics   *metrics.Registry
	tracer    trace.Tracer
	group     singleflight.Group
	logger    *slog.Logger
}

// PreviewDeps groups PreviewUseCase collaborators.
type PreviewDeps struct {
	Orders    repository.OrderRepository
	Designs   repository.DesignRepository
	Storage   Storage
	Cache     PreviewCache
	Converter Converter
	Scheduler Scheduler
	Metrics   *metrics.Registry
	Logger    *slog.Logger
}

// NewPreviewUseCase constructs PreviewUseCase.
func NewPreviewUseCase(cfg PreviewConfig, deps PreviewDeps) *PreviewUseCase {
	return &PreviewUseCase{
		cfg:       cfg,
		orders:    deps.Orders,
		designs:   deps.Designs,
		storage:   deps.Storage,
		cache:     deps.Cache,
		converter: deps.Converter,
		scheduler: deps.Scheduler,
		metrics:   deps.Metrics,
		tracer:    otel.Tracer(tracerName),
		logger:    deps.Logger,
	}
}

// previewTarget is what a record says about one preview kind.
type previewTarget struct {
	recordID    int64
	sourcePath  string
	previewPath *string
}

// Resolve returns the preview of the order's original or latest design.
// The caller must close the returned body.
func (u *PreviewUseCase) Resolve(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error) {
	ctx, span := u.tracer.Start(ctx, "preview.resolve", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("preview.kind", string(kind)),
	))
	defer span.End()

	preview, err := u.resolve(ctx, orderID, kind)
	if err != nil {
		u.metrics.ResolveFailures.WithLabelValues(failureReason(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	u.metrics.Resolutions.WithLabelValues(string(preview.Tier), string(kind)).Inc()
	span.SetAttributes(attribute.String("preview.tier", string(preview.Tier)))
	return preview, nil
}

func (u *PreviewUseCase) resolve(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error) {
	if !u.cfg.Enabled {
		return nil, domainErrors.ErrPreviewDisabled
	}
	if !kind.Valid() {
		return nil, domainErrors.ErrInvalidKind
	}

	target, err := u.loadTarget(ctx, orderID, kind)
	if err != nil {
		return nil, err
	}

	if path, ok := u.cache.Get(orderID, kind); ok {
		if preview, err := openPreview(path, model.TierLocal); err == nil {
			return preview, nil
		}
	}

	if target.previewPath != nil && *target.previewPath != "" {
		preview, err := u.fromRemote(ctx, orderID, kind, *target.previewPath)
		if err == nil {
			return preview, nil
		}
		u.metrics.TierFallthroughs.Inc()
		u.logger.Warn("remote preview unavailable, regenerating",
			slog.Int64("order_id", orderID),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}

	data, err := u.generateOnce(ctx, orderID, kind, target)
	if err != nil {
		return nil, err
	}
	return &model.Preview{
		Body: io.NopCloser(bytes.NewReader(data)),
		Size: int64(len(data)),
		Tier: model.TierGenerated,
	}, nil
}

// DirectLink returns a URL to the cloud-cached preview.
func (u *PreviewUseCase) DirectLink(ctx context.Context, orderID int64, kind model.PreviewKind) (string, error) {
	if !u.cfg.Enabled {
		return "", domainErrors.ErrPreviewDisabled
	}
	if !kind.Valid() {
		return "", domainErrors.ErrInvalidKind
	}

	target, err := u.loadTarget(ctx, orderID, kind)
	if err != nil {
		return "", err
	}
	if target.previewPath == nil || *target.previewPath == "" {
		return "", fmt.Errorf("%s preview of order %d is not cached remotely: %w", kind, orderID, domainErrors.ErrNotFound)
	}
	return u.storage.DirectLink(ctx, *target.previewPath)
}

func (u *PreviewUseCase) loadTarget(ctx context.Context, orderID int64, kind model.PreviewKind) (previewTarget, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return previewTarget{}, err
	}

	if kind == model.PreviewKindDesign {
		design, err := u.designs.GetByOrderID(ctx, orderID)
		if err != nil {
			return previewTarget{}, err
		}
		return previewTarget{recordID: design.ID, sourcePath: design.DesignPath, previewPath: design.DesignPreviewPath}, nil
	}

	if order.OriginalPath == "" {
		return previewTarget{}, fmt.Errorf("order %d has no original artifact: %w", orderID, domainErrors.ErrNotFound)
	}
	return previewTarget{recordID: order.ID, sourcePath: order.OriginalPath, previewPath: order.OriginalPreviewPath}, nil
}

// fromRemote downloads the cloud-cached preview and reseeds the local cache
// with it.
func (u *PreviewUseCase) fromRemote(ctx context.Context, orderID int64, kind model.PreviewKind, remotePath string) (*model.Preview, error) {
	dir, cleanup, err := stagingDir(u.cfg.StagingDir, "preview")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	local, err := u.storage.Download(ctx, remotePath, dir)
	if err != nil {
		return nil, err
	}

	cached, err := u.cache.PutFile(orderID, kind, local)
	if err != nil {
		return nil, err
	}
	return openPreview(cached, model.TierRemote)
}

// generateOnce runs generate, collapsing concurrent calls for the same key
// when singleflight is enabled. Shared calls outlive a single caller's
// cancellation.
func (u *PreviewUseCase) generateOnce(ctx context.Context, orderID int64, kind model.PreviewKind, target previewTarget) ([]byte, error) {
	if !u.cfg.Singleflight {
		return u.generate(ctx, orderID, kind, target)
	}

	key := model.CacheFileName(kind, orderID)
	ch := u.group.DoChan(key, func() (any, error) {
		return u.generate(context.WithoutCancel(ctx), orderID, kind, target)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (u *PreviewUseCase) generate(ctx context.Context, orderID int64, kind model.PreviewKind, target previewTarget) ([]byte, error) {
	dir, cleanup, err := stagingDir(u.cfg.StagingDir, "source")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	source, err := u.storage.Download(ctx, target.sourcePath, dir)
	if err != nil {
		return nil, fmt.Errorf("download source: %w", err)
	}

	start := time.Now()
	data, err := u.converter.Generate(ctx, source)
	u.metrics.GenerateSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	cacheFile, err := u.cache.Put(orderID, kind, data)
	if err != nil {
		u.logger.Warn("preview not cached", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return data, nil
	}

	u.scheduler.Schedule(model.ReconcileJob{
		CacheFile:   cacheFile,
		LogicalName: model.CacheFileName(kind, orderID),
		RecordID:    target.recordID,
		Kind:        kind,
	})
	return data, nil
}

func openPreview(path string, tier model.PreviewTier) (*model.Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &model.Preview{Body: f, Size: info.Size(), Tier: tier}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrPreviewDisabled):
		return "disabled"
	case errors.Is(err, domainErrors.ErrInvalidKind):
		return "invalid_kind"
	case errors.Is(err, domainErrors.ErrTimeout):
		return "timeout"
	case errors.Is(err, domainErrors.ErrConversion):
		return "conversion"
	case errors.Is(err, domainErrors.ErrStorage):
		return "storage"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
