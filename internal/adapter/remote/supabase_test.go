package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "github.com/supabase-community/storage-go"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
)

type fakeBucketStore struct {
	uploaded    map[string][]byte
	contentType string
	upsert      bool
	downloadErr error
	removeErr   error
	removed     []string
	expiresIn   int
	delay       time.Duration
}

func (f *fakeBucketStore) UploadFile(bucketID, relativePath string, data io.Reader, opts ...storage.FileOptions) (storage.FileUploadResponse, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return storage.FileUploadResponse{}, err
	}
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[bucketID+"/"+relativePath] = body
	if len(opts) > 0 {
		if opts[0].ContentType != nil {
			f.contentType = *opts[0].ContentType
		}
		if opts[0].Upsert != nil {
			f.upsert = *opts[0].Upsert
		}
	}
	return storage.FileUploadResponse{}, nil
}

func (f *fakeBucketStore) DownloadFile(bucketID, filePath string, _ ...storage.UrlOptions) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("payload:" + bucketID + "/" + filePath), nil
}

func (f *fakeBucketStore) RemoveFile(bucketID string, paths []string) ([]storage.FileUploadResponse, error) {
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	for _, p := range paths {
		f.removed = append(f.removed, bucketID+"/"+p)
	}
	return nil, nil
}

func (f *fakeBucketStore) CreateSignedUrl(bucketID, filePath string, expiresIn int) (storage.SignedUrlResponse, error) {
	f.expiresIn = expiresIn
	return storage.SignedUrlResponse{SignedURL: "https://project.supabase.co/" + bucketID + "/" + filePath + "?token=t"}, nil
}

func TestSupabaseUpload(t *testing.T) {
	store := &fakeBucketStore{}
	backend := NewSupabase(store, "previews", time.Second, time.Hour, testLogger())
	local := writeTemp(t, "cache_original_3.webp", "webp-bytes")

	remotePath, err := backend.Upload(context.Background(), local, "cache_original_3.webp")
	require.NoError(t, err)
	assert.Equal(t, "supabase://previews/cache_original_3.webp", remotePath)
	assert.Equal(t, "webp-bytes", string(store.uploaded["previews/cache_original_3.webp"]))
	assert.Equal(t, "image/webp", store.contentType)
	assert.True(t, store.upsert)
}

func TestSupabaseUploadTimeout(t *testing.T) {
	store := &fakeBucketStore{delay: 200 * time.Millisecond}
	backend := NewSupabase(store, "previews", 20*time.Millisecond, time.Hour, testLogger())

	_, err := backend.Upload(context.Background(), writeTemp(t, "a.webp", "x"), "a.webp")
	require.ErrorIs(t, err, domainErrors.ErrTimeout)
}

func TestSupabaseDownload(t *testing.T) {
	dest := t.TempDir()
	backend := NewSupabase(&fakeBucketStore{}, "previews", time.Second, time.Hour, testLogger())

	local, err := backend.Download(context.Background(), "supabase://previews/dir/a.webp", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "a.webp"), local)

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "payload:previews/dir/a.webp", string(data))
}

func TestSupabaseDownloadFailure(t *testing.T) {
	store := &fakeBucketStore{downloadErr: errors.New("object not found")}
	backend := NewSupabase(store, "previews", time.Second, time.Hour, testLogger())

	_, err := backend.Download(context.Background(), "supabase://previews/a.webp", t.TempDir())
	require.ErrorIs(t, err, domainErrors.ErrStorage)
	assert.Contains(t, err.Error(), "object not found")
}

func TestSupabaseFailuresCarryAPIDiagnostic(t *testing.T) {
	store := &fakeBucketStore{
		downloadErr: &storage.StorageError{Status: 404, Message: "Object not found"},
		removeErr:   &storage.StorageError{Message: "new row violates row-level security policy"},
	}
	backend := NewSupabase(store, "previews", time.Second, time.Hour, testLogger())

	_, err := backend.Download(context.Background(), "supabase://previews/a.webp", t.TempDir())
	var storageErr *domainErrors.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "404: Object not found", storageErr.Diagnostic)
	assert.Equal(t, "download", storageErr.Op)

	err = backend.Delete(context.Background(), "supabase://previews/a.webp")
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "new row violates row-level security policy", storageErr.Diagnostic)
	require.ErrorIs(t, err, domainErrors.ErrStorage)
}

func TestSupabaseDiagnostic(t *testing.T) {
	assert.Equal(t, "", supabaseDiagnostic(errors.New("dial tcp: refused")))
	assert.Equal(t, "status 500", supabaseDiagnostic(&storage.StorageError{Status: 500}))
	assert.Equal(t, "403: denied", supabaseDiagnostic(fmt.Errorf("wrapped: %w", &storage.StorageError{Status: 403, Message: " denied "})))
}

func TestSupabaseDeleteAndDirectLink(t *testing.T) {
	store := &fakeBucketStore{}
	backend := NewSupabase(store, "previews", time.Second, 90*time.Minute, testLogger())

	require.NoError(t, backend.Delete(context.Background(), "supabase://previews/a.webp"))
	assert.Equal(t, []string{"previews/a.webp"}, store.removed)

	link, err := backend.DirectLink(context.Background(), "supabase://previews/a.webp")
	require.NoError(t, err)
	assert.Contains(t, link, "token=t")
	assert.Equal(t, 5400, store.expiresIn)

	_, err = backend.DirectLink(context.Background(), "s3://previews/a.webp")
	require.ErrorIs(t, err, domainErrors.ErrMalformedRemotePath)
}
