package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/polkiloo/printshop/internal/config"
)

func TestNewProvidesJSONLogger(t *testing.T) {
	l := New(&config.Config{LogLevel: slog.LevelInfo})
	if l == nil {
		t.Fatal("expected logger, got nil")
	}

	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected info level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("did not expect debug level to be enabled")
	}

	if _, ok := l.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("expected JSON handler, got %T", l.Handler())
	}
}

func TestLoggerHonoursLevelAndTagsService(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, slog.LevelDebug)
	l.Debug("cache miss", slog.Int64("order_id", 18))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "printshop" {
		t.Fatalf("expected service attribute, got %v", entry["service"])
	}
	if entry["msg"] != "cache miss" {
		t.Fatalf("unexpected message %v", entry["msg"])
	}
}
