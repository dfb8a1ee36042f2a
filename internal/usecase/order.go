package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders     repository.OrderRepository
	designs    repository.DesignRepository
	storage    Storage
	stagingDir string
	logger     *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, designs repository.DesignRepository, storage Storage, stagingDir string, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, designs: designs, storage: storage, stagingDir: stagingDir, logger: logger}
}

// Create persists a provisional order, uploads its original artifact and
// records the remote path. Every failure after the first step undoes what
// was already done and reports the original error.
func (u *OrderUseCase) Create(ctx context.Context, clientInfo *string, filename string, content io.Reader) (*model.Order, error) {
	order, err := u.orders.Create(ctx, clientInfo)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	dir, cleanup, err := stagingDir(u.stagingDir, "order")
	if err != nil {
		u.discardOrder(ctx, order.ID)
		return nil, err
	}
	defer cleanup()

	name := fmt.Sprintf("original_%d%s", order.ID, extension(filename))
	staged, err := writeStaged(dir, name, content)
	if err != nil {
		u.discardOrder(ctx, order.ID)
		return nil, err
	}

	remotePath, err := u.storage.Upload(ctx, staged, name)
	if err != nil {
		u.discardOrder(ctx, order.ID)
		return nil, fmt.Errorf("upload original: %w", err)
	}

	if err := u.orders.SetOriginalPath(ctx, order.ID, remotePath); err != nil {
		u.discardOrder(ctx, order.ID)
		discardRemote(ctx, u.storage, remotePath, u.logger)
		return nil, fmt.Errorf("store original path: %w", err)
	}

	order.OriginalPath = remotePath
	u.logger.Info("order created", slog.Int64("order_id", order.ID), slog.String("remote_path", remotePath))
	return order, nil
}

func (u *OrderUseCase) discardOrder(ctx context.Context, id int64) {
	if err := u.orders.Delete(context.WithoutCancel(ctx), id); err != nil {
		u.logger.Error("compensating order delete failed",
			slog.Int64("order_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// Get returns the order and its latest design, which is nil when none was
// uploaded yet.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, *model.Design, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	design, err := u.designs.GetByOrderID(ctx, id)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return order, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return order, design, nil
}
