package remote

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

// Backend moves files between local disk and remote storage.
//
// Every call is bounded by the configured external call timeout. Failures are
// reported as *errors.StorageError carrying the backend diagnostic; expired
// deadlines unwrap to ErrTimeout.
type Backend interface {
	Name() string
	// Upload copies localPath to remote storage under logicalName and returns
	// the remote path to persist.
	Upload(ctx context.Context, localPath, logicalName string) (string, error)
	// Download copies remotePath into destDir and returns the local file path.
	Download(ctx context.Context, remotePath, destDir string) (string, error)
	Delete(ctx context.Context, remotePath string) error
	// DirectLink returns a URL a client can fetch remotePath from without
	// going through this service.
	DirectLink(ctx context.Context, remotePath string) (string, error)
}

func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func storageError(ctx context.Context, backend, op, path, diagnostic string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = domainErrors.ErrTimeout
	}
	return &domainErrors.StorageError{
		Backend:    backend,
		Op:         op,
		Path:       path,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

// localTarget prepares destDir and returns the file path a download of key
// lands on.
func localTarget(destDir, base string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(destDir, filepath.Base(base)), nil
}
