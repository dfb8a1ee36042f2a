package handlers

import (
	"context"
	"io"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, clientInfo *string, filename string, content io.Reader) (*model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, *model.Design, error)
}

// DesignFacade covers design upload and print conversion.
type DesignFacade interface {
	UploadDesign(ctx context.Context, orderID int64, filename string, content io.Reader) (*model.Design, error)
	ConvertDesign(ctx context.Context, orderID int64) (*model.Design, error)
}

// PreviewFacade resolves previews.
type PreviewFacade interface {
	Preview(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error)
	PreviewLink(ctx context.Context, orderID int64, kind model.PreviewKind) (string, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// PrintFacade aggregates the full set of operations used across handlers.
type PrintFacade interface {
	OrderFacade
	DesignFacade
	PreviewFacade
	HealthFacade
}
