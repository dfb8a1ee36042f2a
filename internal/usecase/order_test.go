package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	testhelpers "github.com/polkiloo/printshop/internal/test"
)

func newOrderFixture(t *testing.T) (*OrderUseCase, *testhelpers.MemoryStore, *testhelpers.BackendStub, string) {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	backend := testhelpers.NewBackendStub()
	staging := t.TempDir()
	return NewOrderUseCase(store.Orders(), store.Designs(), backend, staging, discardLogger()), store, backend, staging
}

func assertStagingEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staging dir to be empty, found %d entries", len(entries))
	}
}

func TestOrderCreateUploadsOriginal(t *testing.T) {
	uc, store, backend, staging := newOrderFixture(t)
	info := testhelpers.RandomASCIIString(5, 20)

	order, err := uc.Create(context.Background(), &info, "Poster.PDF", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OriginalPath != "stub:original_1.pdf" {
		t.Fatalf("unexpected original path %q", order.OriginalPath)
	}

	stored, ok := store.Order(order.ID)
	if !ok || stored.OriginalPath != order.OriginalPath {
		t.Fatalf("expected persisted original path, got %+v", stored)
	}
	if stored.ClientInfo == nil || *stored.ClientInfo != info {
		t.Fatalf("expected client info %q", info)
	}
	if stored.Status != model.OrderStatusNew {
		t.Fatalf("expected new status, got %s", stored.Status)
	}
	if data, ok := backend.File(order.OriginalPath); !ok || string(data) != "%PDF" {
		t.Fatalf("expected uploaded artifact, got %q", data)
	}
	assertStagingEmpty(t, staging)
}

func TestOrderCreateUploadFailureDeletesRecord(t *testing.T) {
	uc, store, backend, staging := newOrderFixture(t)
	backend.UploadErr = errors.New("network unreachable")

	_, err := uc.Create(context.Background(), nil, "a.png", strings.NewReader("png"))
	if !errors.Is(err, domainErrors.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, ok := store.Order(1); ok {
		t.Fatalf("expected provisional order to be deleted")
	}
	if len(store.Deleted) != 1 || store.Deleted[0] != 1 {
		t.Fatalf("expected order 1 to be deleted, got %v", store.Deleted)
	}
	if len(backend.Deletes) != 0 {
		t.Fatalf("expected no remote delete, got %v", backend.Deletes)
	}
	assertStagingEmpty(t, staging)
}

func TestOrderCreateCommitFailureDeletesRecordAndArtifact(t *testing.T) {
	uc, store, backend, _ := newOrderFixture(t)
	commitErr := errors.New("connection reset")
	store.SetOriginalPathErr = commitErr

	_, err := uc.Create(context.Background(), nil, "a.png", strings.NewReader("png"))
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}
	if _, ok := store.Order(1); ok {
		t.Fatalf("expected provisional order to be deleted")
	}
	if len(backend.Deletes) != 1 || backend.Deletes[0] != "stub:original_1.png" {
		t.Fatalf("expected uploaded artifact to be deleted, got %v", backend.Deletes)
	}
	if _, ok := backend.File("stub:original_1.png"); ok {
		t.Fatalf("expected artifact to be unreachable")
	}
}

func TestOrderCreateCompensationFailureKeepsPrimaryError(t *testing.T) {
	uc, store, backend, _ := newOrderFixture(t)
	commitErr := errors.New("connection reset")
	store.SetOriginalPathErr = commitErr
	store.DeleteOrderErr = errors.New("delete failed")
	backend.DeleteErr = errors.New("remote delete failed")

	_, err := uc.Create(context.Background(), nil, "a.png", strings.NewReader("png"))
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected primary error to survive, got %v", err)
	}
	if errors.Is(err, store.DeleteOrderErr) || errors.Is(err, backend.DeleteErr) {
		t.Fatalf("compensation error must not mask the primary one: %v", err)
	}
	if len(backend.Deletes) != 1 {
		t.Fatalf("expected remote delete to be attempted")
	}
}

func TestOrderCreateRecordFailureSkipsUpload(t *testing.T) {
	uc, store, backend, _ := newOrderFixture(t)
	store.CreateOrderErr = errors.New("db down")

	if _, err := uc.Create(context.Background(), nil, "a.png", strings.NewReader("png")); !errors.Is(err, store.CreateOrderErr) {
		t.Fatalf("expected create error, got %v", err)
	}
	if backend.Calls() != 0 {
		t.Fatalf("expected no storage calls")
	}
}

func TestOrderCreateStagingFailureDeletesRecord(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	backend := testhelpers.NewBackendStub()
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	uc := NewOrderUseCase(store.Orders(), store.Designs(), backend, blocker, discardLogger())

	if _, err := uc.Create(context.Background(), nil, "a.png", strings.NewReader("png")); err == nil {
		t.Fatal("expected staging error")
	}
	if _, ok := store.Order(1); ok {
		t.Fatalf("expected provisional order to be deleted")
	}
	if backend.Calls() != 0 {
		t.Fatalf("expected no storage calls")
	}
}

func TestOrderGet(t *testing.T) {
	uc, store, _, _ := newOrderFixture(t)
	store.PutOrder(model.Order{ID: 1, OriginalPath: "stub:o"})
	store.PutDesign(model.Design{ID: 1, OrderID: 1, DesignPath: "stub:d1"})
	store.PutDesign(model.Design{ID: 2, OrderID: 1, DesignPath: "stub:d2"})
	store.PutOrder(model.Order{ID: 2, OriginalPath: "stub:o2"})

	order, design, err := uc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 1 || design == nil || design.ID != 2 {
		t.Fatalf("expected latest design, got order=%+v design=%+v", order, design)
	}

	_, design, err = uc.Get(context.Background(), 2)
	if err != nil || design != nil {
		t.Fatalf("expected order without design, got %+v (%v)", design, err)
	}

	if _, _, err := uc.Get(context.Background(), 3); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
