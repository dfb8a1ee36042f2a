package telemetry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/printshop/internal/config"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "http://127.0.0.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestRegisterLifecycle(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	lc := fxtest.NewLifecycle(t)
	registerLifecycle(lc, &config.Config{}, logger)

	if err := lc.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := lc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}
