package remote

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

const minioScheme = "s3"

// objectStore is the subset of *minio.Client used by Minio.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Minio stores files in an S3 compatible bucket. Paths take the form
// "s3://bucket/object".
type Minio struct {
	client        objectStore
	bucket        string
	timeout       time.Duration
	presignExpiry time.Duration
	logger        *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewMinioClient dials an S3 compatible endpoint with static credentials.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

func NewMinio(client objectStore, bucket string, timeout, presignExpiry time.Duration, logger *slog.Logger) *Minio {
	return &Minio{
		client:        client,
		bucket:        bucket,
		timeout:       timeout,
		presignExpiry: presignExpiry,
		logger:        logger,
	}
}

func (m *Minio) Name() string { return "minio" }

func (m *Minio) Upload(ctx context.Context, localPath, logicalName string) (string, error) {
	remotePath := Path{Scheme: minioScheme, Qualifier: m.bucket, Key: logicalName}.String()

	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	if _, err := os.Stat(localPath); err != nil {
		return "", storageError(ctx, m.Name(), "upload", remotePath, "", err)
	}
	if err := m.ensureBucket(ctx); err != nil {
		return "", storageError(ctx, m.Name(), "upload", remotePath, minioDiagnostic(err), err)
	}

	opts := minio.PutObjectOptions{ContentType: contentType(logicalName)}
	if _, err := m.client.FPutObject(ctx, m.bucket, logicalName, localPath, opts); err != nil {
		return "", storageError(ctx, m.Name(), "upload", remotePath, minioDiagnostic(err), err)
	}
	m.logger.Debug("uploaded file", slog.String("backend", m.Name()), slog.String("remote_path", remotePath))
	return remotePath, nil
}

func (m *Minio) Download(ctx context.Context, remotePath, destDir string) (string, error) {
	p, err := m.parse(remotePath)
	if err != nil {
		return "", storageError(ctx, m.Name(), "download", remotePath, "", err)
	}
	target, err := localTarget(destDir, p.Base())
	if err != nil {
		return "", storageError(ctx, m.Name(), "download", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	if err := m.client.FGetObject(ctx, p.Qualifier, p.Key, target, minio.GetObjectOptions{}); err != nil {
		return "", storageError(ctx, m.Name(), "download", remotePath, minioDiagnostic(err), err)
	}
	return target, nil
}

func (m *Minio) Delete(ctx context.Context, remotePath string) error {
	p, err := m.parse(remotePath)
	if err != nil {
		return storageError(ctx, m.Name(), "delete", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	if err := m.client.RemoveObject(ctx, p.Qualifier, p.Key, minio.RemoveObjectOptions{}); err != nil {
		return storageError(ctx, m.Name(), "delete", remotePath, minioDiagnostic(err), err)
	}
	return nil
}

func (m *Minio) DirectLink(ctx context.Context, remotePath string) (string, error) {
	p, err := m.parse(remotePath)
	if err != nil {
		return "", storageError(ctx, m.Name(), "link", remotePath, "", err)
	}

	ctx, cancel := boundContext(ctx, m.timeout)
	defer cancel()

	u, err := m.client.PresignedGetObject(ctx, p.Qualifier, p.Key, m.presignExpiry, url.Values{})
	if err != nil {
		return "", storageError(ctx, m.Name(), "link", remotePath, minioDiagnostic(err), err)
	}
	return u.String(), nil
}

// ensureBucket creates the bucket on first use. A failed attempt is retried
// on the next call.
func (m *Minio) ensureBucket(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bucketReady {
		return nil
	}
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			if resp := minio.ToErrorResponse(err); resp.Code != "BucketAlreadyOwnedByYou" && resp.Code != "BucketAlreadyExists" {
				return err
			}
		}
		m.logger.Info("created bucket", slog.String("bucket", m.bucket))
	}
	m.bucketReady = true
	return nil
}

func (m *Minio) parse(remotePath string) (Path, error) {
	p, err := ParsePath(remotePath)
	if err != nil {
		return Path{}, err
	}
	if p.Scheme != minioScheme {
		return Path{}, fmt.Errorf("%w: unexpected scheme %q", domainErrors.ErrMalformedRemotePath, p.Scheme)
	}
	return p, nil
}

func minioDiagnostic(err error) string {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "" {
		return ""
	}
	if resp.Message == "" {
		return resp.Code
	}
	return resp.Code + ": " + resp.Message
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
