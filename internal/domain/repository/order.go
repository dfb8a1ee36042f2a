package repository

import (
	"context"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create persists a provisional order with an empty original path.
	Create(ctx context.Context, clientInfo *string) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	SetOriginalPath(ctx context.Context, id int64, remotePath string) error
	SetOriginalPreviewPath(ctx context.Context, id int64, remotePath string) error
	Delete(ctx context.Context, id int64) error
}
