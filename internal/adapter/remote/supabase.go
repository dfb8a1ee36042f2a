package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

const supabaseScheme = "supabase"

// bucketStore is the subset of *storage.Client used by Supabase.
type bucketStore interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	DownloadFile(bucketID string, filePath string, urlOptions ...storage.UrlOptions) ([]byte, error)
	RemoveFile(bucketID string, paths []string) ([]storage.FileUploadResponse, error)
	CreateSignedUrl(bucketID string, filePath string, expiresIn int) (storage.SignedUrlResponse, error)
}

// Supabase stores files in a Supabase Storage bucket. Paths take the form
// "supabase://bucket/object".
type Supabase struct {
	client        bucketStore
	bucket        string
	timeout       time.Duration
	presignExpiry time.Duration
	logger        *slog.Logger
}

// NewSupabaseClient builds a storage client for the project at projectURL.
func NewSupabaseClient(projectURL, key string) *storage.Client {
	return storage.NewClient(strings.TrimSuffix(projectURL, "/")+"/storage/v1", key, nil)
}

func NewSupabase(client bucketStore, bucket string, timeout, presignExpiry time.Duration, logger *slog.Logger) *Supabase {
	return &Supabase{
		client:        client,
		bucket:        bucket,
		timeout:       timeout,
		presignExpiry: presignExpiry,
		logger:        logger,
	}
}

func (s *Supabase) Name() string { return "supabase" }

func (s *Supabase) Upload(ctx context.Context, localPath, logicalName string) (string, error) {
	remotePath := Path{Scheme: supabaseScheme, Qualifier: s.bucket, Key: logicalName}.String()

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", storageError(ctx, s.Name(), "upload", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, s.timeout)
	defer cancel()

	ct := contentType(logicalName)
	upsert := true
	err = callWithContext(ctx, func() error {
		_, err := s.client.UploadFile(s.bucket, logicalName, bytes.NewReader(data), storage.FileOptions{
			ContentType: &ct,
			Upsert:      &upsert,
		})
		return err
	})
	if err != nil {
		return "", storageError(ctx, s.Name(), "upload", remotePath, supabaseDiagnostic(err), err)
	}
	s.logger.Debug("uploaded file", slog.String("backend", s.Name()), slog.String("remote_path", remotePath))
	return remotePath, nil
}

func (s *Supabase) Download(ctx context.Context, remotePath, destDir string) (string, error) {
	p, err := s.parse(remotePath)
	if err != nil {
		return "", storageError(ctx, s.Name(), "download", remotePath, "", err)
	}
	target, err := localTarget(destDir, p.Base())
	if err != nil {
		return "", storageError(ctx, s.Name(), "download", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, s.timeout)
	defer cancel()

	var data []byte
	err = callWithContext(ctx, func() error {
		var err error
		data, err = s.client.DownloadFile(p.Qualifier, p.Key)
		return err
	})
	if err != nil {
		return "", storageError(ctx, s.Name(), "download", remotePath, supabaseDiagnostic(err), err)
	}
	if err := writeFileAtomic(target, data); err != nil {
		return "", storageError(ctx, s.Name(), "download", remotePath, "", err)
	}
	return target, nil
}

func (s *Supabase) Delete(ctx context.Context, remotePath string) error {
	p, err := s.parse(remotePath)
	if err != nil {
		return storageError(ctx, s.Name(), "delete", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, s.timeout)
	defer cancel()

	err = callWithContext(ctx, func() error {
		_, err := s.client.RemoveFile(p.Qualifier, []string{p.Key})
		return err
	})
	if err != nil {
		return storageError(ctx, s.Name(), "delete", remotePath, supabaseDiagnostic(err), err)
	}
	return nil
}

func (s *Supabase) DirectLink(ctx context.Context, remotePath string) (string, error) {
	p, err := s.parse(remotePath)
	if err != nil {
		return "", storageError(ctx, s.Name(), "link", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, s.timeout)
	defer cancel()

	var resp storage.SignedUrlResponse
	err = callWithContext(ctx, func() error {
		var err error
		resp, err = s.client.CreateSignedUrl(p.Qualifier, p.Key, int(s.presignExpiry/time.Second))
		return err
	})
	if err != nil {
		return "", storageError(ctx, s.Name(), "link", remotePath, supabaseDiagnostic(err), err)
	}
	if resp.SignedURL == "" {
		return "", storageError(ctx, s.Name(), "link", remotePath, "empty signed url", domainErrors.ErrStorage)
	}
	return resp.SignedURL, nil
}

func (s *Supabase) parse(remotePath string) (Path, error) {
	p, err := ParsePath(remotePath)
	if err != nil {
		return Path{}, err
	}
	if p.Scheme != supabaseScheme {
		return Path{}, fmt.Errorf("%w: unexpected scheme %q", domainErrors.ErrMalformedRemotePath, p.Scheme)
	}
	return p, nil
}

// supabaseDiagnostic extracts the status and message the storage API
// returned. Transport errors carry no API diagnostic.
func supabaseDiagnostic(err error) string {
	var apiErr *storage.StorageError
	if !errors.As(err, &apiErr) {
		return ""
	}
	msg := strings.TrimSpace(apiErr.Message)
	switch {
	case apiErr.Status != 0 && msg != "":
		return fmt.Sprintf("%d: %s", apiErr.Status, msg)
	case apiErr.Status != 0:
		return fmt.Sprintf("status %d", apiErr.Status)
	default:
		return msg
	}
}

// callWithContext runs a blocking SDK call that has no context support. The
// caller stops waiting once ctx is done; the call itself finishes in the
// background.
func callWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeFileAtomic(target string, data []byte) error {
	tmp := target + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
