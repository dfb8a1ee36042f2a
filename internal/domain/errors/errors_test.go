package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"preview disabled", ErrPreviewDisabled},
		{"invalid kind", ErrInvalidKind},
		{"storage", ErrStorage},
		{"conversion", ErrConversion},
		{"timeout", ErrTimeout},
		{"malformed remote path", ErrMalformedRemotePath},
		{"link unsupported", ErrLinkUnsupported},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestStorageErrorMatchesSentinelAndCause(t *testing.T) {
	err := fmt.Errorf("upload preview: %w", &StorageError{
		Backend:    "rclone",
		Op:         "upload",
		Path:       "yandex:prints/cache_original_1.webp",
		Diagnostic: "  Failed to copy: directory not found\n",
		Err:        ErrTimeout,
	})

	if !stdErrors.Is(err, ErrStorage) {
		t.Fatal("expected storage sentinel to match")
	}
	if !stdErrors.Is(err, ErrTimeout) {
		t.Fatal("expected wrapped timeout to match")
	}
	if stdErrors.Is(err, ErrConversion) {
		t.Fatal("did not expect conversion sentinel to match")
	}

	var se *StorageError
	if !stdErrors.As(err, &se) || se.Backend != "rclone" {
		t.Fatalf("expected storage error to be extractable, got %v", se)
	}
	if !strings.HasSuffix(err.Error(), "directory not found") {
		t.Fatalf("expected trimmed diagnostic at the end of message, got %q", err.Error())
	}
}

func TestConversionErrorMessageIncludesDiagnostic(t *testing.T) {
	err := &ConversionError{Source: "design.svg", Diagnostic: "inkscape: cannot open display", Err: context.DeadlineExceeded}
	if !stdErrors.Is(err, ErrConversion) {
		t.Fatal("expected conversion sentinel to match")
	}
	if !stdErrors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "inkscape: cannot open display") {
		t.Fatalf("expected diagnostic in message, got %q", err.Error())
	}
}
