package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
)

// DesignUseCase handles design uploads and print conversion.
type DesignUseCase struct {
	orders     repository.OrderRepository
	designs    repository.DesignRepository
	storage    Storage
	cache      PreviewCache
	converter  Converter
	stagingDir string
	logger     *slog.Logger
}

// NewDesignUseCase constructs DesignUseCase.
func NewDesignUseCase(orders repository.OrderRepository, designs repository.DesignRepository, storage Storage, cache PreviewCache, converter Converter, stagingDir string, logger *slog.Logger) *DesignUseCase {
	return &DesignUseCase{
		orders:     orders,
		designs:    designs,
		storage:    storage,
		cache:      cache,
		converter:  converter,
		stagingDir: stagingDir,
		logger:     logger,
	}
}

// Upload stores a design artifact for an existing order. The new design
// becomes the order's latest, so the order's cached design preview is dropped.
func (u *DesignUseCase) Upload(ctx context.Context, orderID int64, filename string, content io.Reader) (*model.Design, error) {
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	dir, cleanup, err := stagingDir(u.stagingDir, "design")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	name := fmt.Sprintf("%d_design%s", orderID, extension(filename))
	staged, err := writeStaged(dir, name, content)
	if err != nil {
		return nil, err
	}

	remotePath, err := u.storage.Upload(ctx, staged, name)
	if err != nil {
		return nil, fmt.Errorf("upload design: %w", err)
	}

	design, err := u.designs.Create(ctx, orderID, remotePath)
	if err != nil {
		discardRemote(ctx, u.storage, remotePath, u.logger)
		return nil, fmt.Errorf("create design: %w", err)
	}

	if err := u.cache.Invalidate(orderID, model.PreviewKindDesign); err != nil {
		u.logger.Error("failed to drop cached design preview",
			slog.Int64("order_id", orderID),
			slog.Any("error", err),
		)
	}

	u.logger.Info("design uploaded",
		slog.Int64("order_id", orderID),
		slog.Int64("design_id", design.ID),
		slog.String("remote_path", remotePath),
	)
	return design, nil
}

// Convert produces the print-ready JPEG of the order's latest design and
// marks the design converted.
func (u *DesignUseCase) Convert(ctx context.Context, orderID int64) (*model.Design, error) {
	design, err := u.designs.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	dir, cleanup, err := stagingDir(u.stagingDir, "convert")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	source, err := u.storage.Download(ctx, design.DesignPath, dir)
	if err != nil {
		return nil, fmt.Errorf("download design: %w", err)
	}

	data, err := u.converter.ConvertForPrint(ctx, source)
	if err != nil {
		return nil, err
	}

	name := convertedName(source)
	staged, err := writeStaged(dir, name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	remotePath, err := u.storage.Upload(ctx, staged, name)
	if err != nil {
		return nil, fmt.Errorf("upload converted design: %w", err)
	}

	if err := u.designs.SetConvertedPath(ctx, design.ID, remotePath, model.DesignStatusConverted); err != nil {
		discardRemote(ctx, u.storage, remotePath, u.logger)
		return nil, fmt.Errorf("store converted path: %w", err)
	}

	design.ConvertedPath = &remotePath
	design.Status = model.DesignStatusConverted
	u.logger.Info("design converted", slog.Int64("design_id", design.ID), slog.String("remote_path", remotePath))
	return design, nil
}

// convertedName maps "12_design.tar.svg" to "converted_12_design.jpg".
func convertedName(source string) string {
	stem, _, _ := strings.Cut(filepath.Base(source), ".")
	return "converted_" + stem + ".jpg"
}
