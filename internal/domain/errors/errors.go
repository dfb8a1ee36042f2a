package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrPreviewDisabled     = errors.New("preview disabled")
	ErrInvalidKind         = errors.New("invalid preview kind")
	ErrStorage             = errors.New("storage failure")
	ErrConversion          = errors.New("conversion failure")
	ErrTimeout             = errors.New("external call timed out")
	ErrMalformedRemotePath = errors.New("malformed remote path")
	ErrLinkUnsupported     = errors.New("direct link unsupported")
)

// StorageError reports a failed call against a remote storage backend.
// Diagnostic carries the backend's own text (tool stderr, response body).
type StorageError struct {
	Backend    string
	Op         string
	Path       string
	Diagnostic string
	Err        error
}

func (e *StorageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Backend, e.Op)
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		fmt.Fprintf(&b, ": %s", d)
	}
	return b.String()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ConversionError reports a source that could not be decoded or rasterized.
type ConversionError struct {
	Source     string
	Diagnostic string
	Err        error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "convert %q", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		fmt.Fprintf(&b, ": %s", d)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }
