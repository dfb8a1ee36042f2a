package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/printshop/internal/config"
	testhelpers "github.com/polkiloo/printshop/internal/test"
)

type reconcilerStub struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (r *reconcilerStub) Start(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *reconcilerStub) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func (r *reconcilerStub) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started, r.stopped
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestRegisterHooksStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	reconciler := &reconcilerStub{}
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerHooks(recorder, shutdowner, logger, server, reconciler, cfg)

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}
	if started, _ := reconciler.counts(); started != 1 {
		t.Fatalf("expected reconciler to start")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
	if _, stopped := reconciler.counts(); stopped != 1 {
		t.Fatalf("expected reconciler to stop")
	}
}

func TestRegisterHooksShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "bad addr"}

	registerHooks(recorder, shutdowner, logger, server, &reconcilerStub{}, &config.Config{ShutdownTimeout: time.Second})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestLifecycleRecorderAppend(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	recorder.Append(fx.Hook{})
	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected hook to be appended")
	}
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
}
