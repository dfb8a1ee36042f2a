package repository

import (
	"context"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// DesignRepository describes persistence operations with designs.
type DesignRepository interface {
	Create(ctx context.Context, orderID int64, designPath string) (*model.Design, error)
	GetByID(ctx context.Context, id int64) (*model.Design, error)
	// GetByOrderID returns the most recently created design of the order.
	GetByOrderID(ctx context.Context, orderID int64) (*model.Design, error)
	SetPreviewPath(ctx context.Context, id int64, remotePath string) error
	SetConvertedPath(ctx context.Context, id int64, remotePath string, status model.DesignStatus) error
}
