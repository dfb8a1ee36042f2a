package test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

// BackendStub is an in-memory remote storage backend. Remote paths take the
// form "stub:<name>".
type BackendStub struct {
	mu    sync.Mutex
	files map[string][]byte

	UploadErr   error
	DownloadErr error
	DeleteErr   error
	LinkErr     error
	// UploadFn, when set, replaces Upload entirely.
	UploadFn func(ctx context.Context, localPath, logicalName string) (string, error)

	Uploads   []string
	Downloads []string
	Deletes   []string
}

// NewBackendStub constructs an empty backend.
func NewBackendStub() *BackendStub {
	return &BackendStub{files: make(map[string][]byte)}
}

// Seed stores data under remotePath.
func (b *BackendStub) Seed(remotePath string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.files == nil {
		b.files = make(map[string][]byte)
	}
	b.files[remotePath] = data
}

// File returns the stored content of remotePath.
func (b *BackendStub) File(remotePath string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.files[remotePath]
	return data, ok
}

// Calls returns the total number of storage operations performed.
func (b *BackendStub) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Uploads) + len(b.Downloads) + len(b.Deletes)
}

// UploadCount returns the number of upload attempts.
func (b *BackendStub) UploadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Uploads)
}

func (b *BackendStub) Name() string { return "stub" }

func (b *BackendStub) Upload(ctx context.Context, localPath, logicalName string) (string, error) {
	b.mu.Lock()
	b.Uploads = append(b.Uploads, logicalName)
	fn, uploadErr := b.UploadFn, b.UploadErr
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, localPath, logicalName)
	}
	if uploadErr != nil {
		return "", &domainErrors.StorageError{Backend: "stub", Op: "upload", Path: logicalName, Err: uploadErr}
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", &domainErrors.StorageError{Backend: "stub", Op: "upload", Path: logicalName, Err: err}
	}
	remotePath := "stub:" + logicalName
	b.Seed(remotePath, data)
	return remotePath, nil
}

func (b *BackendStub) Download(ctx context.Context, remotePath, destDir string) (string, error) {
	b.mu.Lock()
	b.Downloads = append(b.Downloads, remotePath)
	downloadErr := b.DownloadErr
	data, ok := b.files[remotePath]
	b.mu.Unlock()

	if downloadErr != nil {
		return "", &domainErrors.StorageError{Backend: "stub", Op: "download", Path: remotePath, Err: downloadErr}
	}
	if !ok {
		return "", &domainErrors.StorageError{Backend: "stub", Op: "download", Path: remotePath, Err: errors.New("object not found")}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(destDir, filepath.Base(strings.TrimPrefix(remotePath, "stub:")))
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

func (b *BackendStub) Delete(ctx context.Context, remotePath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deletes = append(b.Deletes, remotePath)
	if b.DeleteErr != nil {
		return &domainErrors.StorageError{Backend: "stub", Op: "delete", Path: remotePath, Err: b.DeleteErr}
	}
	delete(b.files, remotePath)
	return nil
}

func (b *BackendStub) DirectLink(ctx context.Context, remotePath string) (string, error) {
	if b.LinkErr != nil {
		return "", b.LinkErr
	}
	return "https://stub.example/" + strings.TrimPrefix(remotePath, "stub:"), nil
}
