package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/preview"
	testhelpers "github.com/polkiloo/printshop/internal/test"
)

type designFixture struct {
	uc        *DesignUseCase
	store     *testhelpers.MemoryStore
	backend   *testhelpers.BackendStub
	generator *testhelpers.GeneratorStub
	cache     *preview.Cache
	spy       *testhelpers.CacheSpy
}

func newDesignFixture(t *testing.T) designFixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	backend := testhelpers.NewBackendStub()
	generator := &testhelpers.GeneratorStub{PrintData: []byte("jpeg")}
	root := t.TempDir()
	cache, err := preview.NewCache(filepath.Join(root, "original"), filepath.Join(root, "design"), time.Hour, discardLogger())
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	spy := &testhelpers.CacheSpy{Inner: cache}
	uc := NewDesignUseCase(store.Orders(), store.Designs(), backend, spy, generator, filepath.Join(root, "uploads"), discardLogger())
	return designFixture{uc: uc, store: store, backend: backend, generator: generator, cache: cache, spy: spy}
}

func TestDesignUpload(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:original_7.png"})

	design, err := f.uc.Upload(context.Background(), 7, testhelpers.RandomFilename("SVG"), strings.NewReader("<svg/>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if design.DesignPath != "stub:7_design.svg" {
		t.Fatalf("unexpected design path %q", design.DesignPath)
	}
	if design.Status != model.DesignStatusCompleted {
		t.Fatalf("expected design_completed status, got %s", design.Status)
	}
	if data, ok := f.backend.File(design.DesignPath); !ok || string(data) != "<svg/>" {
		t.Fatalf("expected uploaded design, got %q", data)
	}
}

func TestDesignUploadDropsCachedDesignPreview(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 4, OriginalPath: "stub:original_4.png"})

	cached, err := f.cache.Put(4, model.PreviewKindDesign, []byte("old design preview"))
	if err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	original, err := f.cache.Put(4, model.PreviewKindOriginal, []byte("original preview"))
	if err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if _, err := f.uc.Upload(context.Background(), 4, "layout.png", strings.NewReader("v2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(cached); !os.IsNotExist(err) {
		t.Fatalf("expected cached design preview to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("expected original preview to be kept: %v", err)
	}
	if f.spy.Invalidations() != 1 {
		t.Fatalf("expected one invalidation, got %d", f.spy.Invalidations())
	}
}

func TestDesignUploadFailureKeepsCachedPreview(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 4, OriginalPath: "stub:o"})
	f.backend.UploadErr = errors.New("quota")

	if _, err := f.cache.Put(4, model.PreviewKindDesign, []byte("current")); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if _, err := f.uc.Upload(context.Background(), 4, "layout.png", strings.NewReader("v2")); err == nil {
		t.Fatalf("expected upload error")
	}
	if _, ok := f.cache.Get(4, model.PreviewKindDesign); !ok {
		t.Fatalf("expected cached preview of the current design to remain")
	}
	if f.spy.Invalidations() != 0 {
		t.Fatalf("expected no invalidation, got %d", f.spy.Invalidations())
	}
}

func TestDesignUploadUnknownOrder(t *testing.T) {
	f := newDesignFixture(t)

	_, err := f.uc.Upload(context.Background(), 7, "layout.svg", strings.NewReader("<svg/>"))
	if !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if f.backend.Calls() != 0 {
		t.Fatalf("expected no storage calls")
	}
}

func TestDesignUploadRecordFailureDeletesArtifact(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:o"})
	f.store.CreateDesignErr = errors.New("insert failed")

	_, err := f.uc.Upload(context.Background(), 7, "layout.svg", strings.NewReader("<svg/>"))
	if !errors.Is(err, f.store.CreateDesignErr) {
		t.Fatalf("expected create error, got %v", err)
	}
	if len(f.backend.Deletes) != 1 || f.backend.Deletes[0] != "stub:7_design.svg" {
		t.Fatalf("expected uploaded design to be deleted, got %v", f.backend.Deletes)
	}
}

func TestDesignConvert(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:o"})
	f.store.PutDesign(model.Design{ID: 3, OrderID: 7, DesignPath: "stub:7_design.svg"})
	f.backend.Seed("stub:7_design.svg", []byte("<svg/>"))

	design, err := f.uc.Convert(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if design.Status != model.DesignStatusConverted {
		t.Fatalf("expected converted status, got %s", design.Status)
	}
	if design.ConvertedPath == nil || *design.ConvertedPath != "stub:converted_7_design.jpg" {
		t.Fatalf("unexpected converted path %v", design.ConvertedPath)
	}
	if data, ok := f.backend.File("stub:converted_7_design.jpg"); !ok || string(data) != "jpeg" {
		t.Fatalf("expected uploaded print file, got %q", data)
	}

	stored, _ := f.store.Design(3)
	if stored.Status != model.DesignStatusConverted || stored.ConvertedPath == nil {
		t.Fatalf("expected persisted conversion, got %+v", stored)
	}
}

func TestDesignConvertWithoutDesign(t *testing.T) {
	f := newDesignFixture(t)
	f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:o"})

	if _, err := f.uc.Convert(context.Background(), 7); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDesignConvertFailures(t *testing.T) {
	t.Run("conversion", func(t *testing.T) {
		f := newDesignFixture(t)
		f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:o"})
		f.store.PutDesign(model.Design{ID: 3, OrderID: 7, DesignPath: "stub:7_design.svg"})
		f.backend.Seed("stub:7_design.svg", []byte("<svg/>"))
		f.generator.Err = &domainErrors.ConversionError{Source: "7_design.svg"}

		if _, err := f.uc.Convert(context.Background(), 7); !errors.Is(err, domainErrors.ErrConversion) {
			t.Fatalf("expected conversion error, got %v", err)
		}
		if f.backend.UploadCount() != 0 {
			t.Fatalf("expected no upload")
		}
	})

	t.Run("commit", func(t *testing.T) {
		f := newDesignFixture(t)
		f.store.PutOrder(model.Order{ID: 7, OriginalPath: "stub:o"})
		f.store.PutDesign(model.Design{ID: 3, OrderID: 7, DesignPath: "stub:7_design.svg"})
		f.backend.Seed("stub:7_design.svg", []byte("<svg/>"))
		f.store.SetConvertedErr = errors.New("update failed")

		if _, err := f.uc.Convert(context.Background(), 7); !errors.Is(err, f.store.SetConvertedErr) {
			t.Fatalf("expected commit error, got %v", err)
		}
		if _, ok := f.backend.File("stub:converted_7_design.jpg"); ok {
			t.Fatalf("expected converted artifact to be deleted")
		}
		stored, _ := f.store.Design(3)
		if stored.Status != model.DesignStatusCompleted {
			t.Fatalf("expected status unchanged, got %s", stored.Status)
		}
	})
}

func TestConvertedName(t *testing.T) {
	cases := map[string]string{
		"/tmp/x/12_design.svg": "converted_12_design.jpg",
		"12_design.tar.gz":     "converted_12_design.jpg",
		"/stage/original_3":    "converted_original_3.jpg",
	}
	for in, want := range cases {
		if got := convertedName(in); got != want {
			t.Fatalf("convertedName(%q) = %q, want %q", in, got, want)
		}
	}
}
