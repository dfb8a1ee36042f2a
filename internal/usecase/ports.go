package usecase

import (
	"context"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// Storage is the remote artifact store.
type Storage interface {
	Upload(ctx context.Context, localPath, logicalName string) (string, error)
	Download(ctx context.Context, remotePath, destDir string) (string, error)
	Delete(ctx context.Context, remotePath string) error
	DirectLink(ctx context.Context, remotePath string) (string, error)
}

// PreviewCache is the local preview cache.
type PreviewCache interface {
	Get(orderID int64, kind model.PreviewKind) (string, bool)
	Put(orderID int64, kind model.PreviewKind, data []byte) (string, error)
	PutFile(orderID int64, kind model.PreviewKind, src string) (string, error)
	Invalidate(orderID int64, kind model.PreviewKind) error
}

// Converter turns source artifacts into preview and print images.
type Converter interface {
	Generate(ctx context.Context, source string) ([]byte, error)
	ConvertForPrint(ctx context.Context, source string) ([]byte, error)
}

// Scheduler accepts reconciliation jobs without blocking.
type Scheduler interface {
	Schedule(job model.ReconcileJob) bool
}
