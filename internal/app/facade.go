package app

import (
	"context"
	"io"

	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/usecase"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PrintFacade exposes the use cases to the transport layer.
type PrintFacade struct {
	orders   *usecase.OrderUseCase
	designs  *usecase.DesignUseCase
	previews *usecase.PreviewUseCase
	health   HealthChecker
}

func NewPrintFacade(orders *usecase.OrderUseCase, designs *usecase.DesignUseCase, previews *usecase.PreviewUseCase, health HealthChecker) *PrintFacade {
	return &PrintFacade{orders: orders, designs: designs, previews: previews, health: health}
}

func (f *PrintFacade) CreateOrder(ctx context.Context, clientInfo *string, filename string, content io.Reader) (*model.Order, error) {
	return f.orders.Create(ctx, clientInfo, filename, content)
}

func (f *PrintFacade) Order(ctx context.Context, id int64) (*model.Order, *model.Design, error) {
	return f.orders.Get(ctx, id)
}

func (f *PrintFacade) UploadDesign(ctx context.Context, orderID int64, filename string, content io.Reader) (*model.Design, error) {
	return f.designs.Upload(ctx, orderID, filename, content)
}

func (f *PrintFacade) ConvertDesign(ctx context.Context, orderID int64) (*model.Design, error) {
	return f.designs.Convert(ctx, orderID)
}

func (f *PrintFacade) Preview(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error) {
	return f.previews.Resolve(ctx, orderID, kind)
}

func (f *PrintFacade) PreviewLink(ctx context.Context, orderID int64, kind model.PreviewKind) (string, error) {
	return f.previews.DirectLink(ctx, orderID, kind)
}

func (f *PrintFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
