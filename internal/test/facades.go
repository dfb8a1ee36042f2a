package test

import (
	"context"
	"io"
	"strings"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
)

// PrintFacadeStub implements the HTTP facade with overridable behaviour.
// Unset functions return ErrNotFound, except Ping which succeeds.
type PrintFacadeStub struct {
	CreateOrderFn   func(ctx context.Context, clientInfo *string, filename string, content io.Reader) (*model.Order, error)
	OrderFn         func(ctx context.Context, id int64) (*model.Order, *model.Design, error)
	UploadDesignFn  func(ctx context.Context, orderID int64, filename string, content io.Reader) (*model.Design, error)
	ConvertDesignFn func(ctx context.Context, orderID int64) (*model.Design, error)
	PreviewFn       func(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error)
	PreviewLinkFn   func(ctx context.Context, orderID int64, kind model.PreviewKind) (string, error)
	PingErr         error
}

func (s PrintFacadeStub) CreateOrder(ctx context.Context, clientInfo *string, filename string, content io.Reader) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, clientInfo, filename, content)
	}
	return nil, domainErrors.ErrNotFound
}

func (s PrintFacadeStub) Order(ctx context.Context, id int64) (*model.Order, *model.Design, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return nil, nil, domainErrors.ErrNotFound
}

func (s PrintFacadeStub) UploadDesign(ctx context.Context, orderID int64, filename string, content io.Reader) (*model.Design, error) {
	if s.UploadDesignFn != nil {
		return s.UploadDesignFn(ctx, orderID, filename, content)
	}
	return nil, domainErrors.ErrNotFound
}

func (s PrintFacadeStub) ConvertDesign(ctx context.Context, orderID int64) (*model.Design, error) {
	if s.ConvertDesignFn != nil {
		return s.ConvertDesignFn(ctx, orderID)
	}
	return nil, domainErrors.ErrNotFound
}

func (s PrintFacadeStub) Preview(ctx context.Context, orderID int64, kind model.PreviewKind) (*model.Preview, error) {
	if s.PreviewFn != nil {
		return s.PreviewFn(ctx, orderID, kind)
	}
	return nil, domainErrors.ErrNotFound
}

func (s PrintFacadeStub) PreviewLink(ctx context.Context, orderID int64, kind model.PreviewKind) (string, error) {
	if s.PreviewLinkFn != nil {
		return s.PreviewLinkFn(ctx, orderID, kind)
	}
	return "", domainErrors.ErrNotFound
}

func (s PrintFacadeStub) Ping(context.Context) error { return s.PingErr }

// StaticPreview builds a preview served from memory.
func StaticPreview(body string, tier model.PreviewTier) *model.Preview {
	return &model.Preview{Body: io.NopCloser(strings.NewReader(body)), Size: int64(len(body)), Tier: tier}
}
