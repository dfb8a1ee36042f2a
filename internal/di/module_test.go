package di

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/adapter/remote"
	"github.com/polkiloo/printshop/internal/app"
	"github.com/polkiloo/printshop/internal/config"
	"github.com/polkiloo/printshop/internal/domain/repository"
	"github.com/polkiloo/printshop/internal/storage/postgres"
	"github.com/polkiloo/printshop/internal/test"
	"github.com/polkiloo/printshop/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		UploadDir:           filepath.Join(root, "uploads"),
		CacheOriginalDir:    filepath.Join(root, "cache", "original"),
		CacheDesignDir:      filepath.Join(root, "cache", "design"),
		CacheTTL:            time.Hour,
		PreviewEnabled:      true,
		PreviewQuality:      75,
		PrintQuality:        90,
		ConversionWorkers:   1,
		RasterizeCommand:    []string{"inkscape", "--export-filename={output}", "{input}"},
		ExternalCallTimeout: time.Second,
		StorageBackend:      config.BackendRclone,
		RcloneBinary:        "rclone",
		RcloneRemote:        "yandex:prints",
		ReconcileWorkers:    1,
		ReconcileQueueSize:  1,
		ShutdownTimeout:     time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewMemoryStore()
	backend := test.NewBackendStub()

	var (
		facade     *app.PrintFacade
		reconciler *worker.Reconciler
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(store.Orders())),
			fx.Replace(repository.DesignRepository(store.Designs())),
			fx.Replace(repository.Sessions(store)),
			fx.Replace(remote.Backend(backend)),
		),
		fx.Populate(&facade, &reconciler),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected print facade instance")
	}
	if reconciler == nil {
		t.Fatal("expected reconciler instance")
	}
}
