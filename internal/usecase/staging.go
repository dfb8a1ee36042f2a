package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// stagingDir creates a private directory under base. The returned cleanup
// removes it with everything inside.
func stagingDir(base, prefix string) (string, func(), error) {
	dir := filepath.Join(base, prefix+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("create staging dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func writeStaged(dir, name string, r io.Reader) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	return path, nil
}

// extension returns the lower-cased extension of a client supplied name.
func extension(filename string) string {
	return strings.ToLower(filepath.Ext(filepath.Base(filename)))
}

// discardRemote deletes an uploaded artifact after a later step failed. Its
// own failure is only logged.
func discardRemote(ctx context.Context, storage Storage, remotePath string, logger *slog.Logger) {
	if err := storage.Delete(context.WithoutCancel(ctx), remotePath); err != nil {
		logger.Error("compensating delete failed",
			slog.String("remote_path", remotePath),
			slog.String("error", err.Error()),
		)
	}
}
