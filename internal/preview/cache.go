package preview

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/polkiloo/printshop/internal/domain/model"
)

// Cache is a disk-backed preview store keyed by (order id, kind) with
// modification-time based expiry.
//
// Writes replace whole files through a rename so readers never observe a
// partial preview. Concurrent writers for the same key are last-write-wins.
type Cache struct {
	dirs   map[model.PreviewKind]string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCache creates the per-kind cache directories when missing.
func NewCache(originalDir, designDir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	dirs := map[model.PreviewKind]string{
		model.PreviewKindOriginal: originalDir,
		model.PreviewKindDesign:   designDir,
	}
	for kind, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s cache dir: %w", kind, err)
		}
	}
	return &Cache{
		dirs:   dirs,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Path returns the deterministic cache file path for (orderID, kind).
func (c *Cache) Path(orderID int64, kind model.PreviewKind) string {
	return filepath.Join(c.dirs[kind], model.CacheFileName(kind, orderID))
}

// Get returns the cached preview path when it exists and is strictly younger
// than the TTL. Expired entries are removed.
func (c *Cache) Get(orderID int64, kind model.PreviewKind) (string, bool) {
	path := c.Path(orderID, kind)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	if c.now().Sub(info.ModTime()) >= c.ttl {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove expired preview", slog.String("path", path), slog.Any("error", err))
		} else {
			c.logger.Debug("expired preview removed", slog.String("path", path))
		}
		return "", false
	}

	return path, true
}

// Invalidate removes the preview for (orderID, kind). A missing entry is not
// an error.
func (c *Cache) Invalidate(orderID int64, kind model.PreviewKind) error {
	path := c.Path(orderID, kind)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cached preview: %w", err)
	}
	return nil
}

// Put stores data as the preview for (orderID, kind) and returns its path.
func (c *Cache) Put(orderID int64, kind model.PreviewKind, data []byte) (string, error) {
	return c.write(orderID, kind, bytes.NewReader(data))
}

// PutFile copies the file at src into the cache.
func (c *Cache) PutFile(orderID int64, kind model.PreviewKind, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return c.write(orderID, kind, f)
}

func (c *Cache) write(orderID int64, kind model.PreviewKind, r io.Reader) (string, error) {
	target := c.Path(orderID, kind)

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("replace cache file: %w", err)
	}
	return target, nil
}
