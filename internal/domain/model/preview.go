package model

import (
	"fmt"
	"io"
)

// PreviewKind selects which artifact of an order is previewed.
type PreviewKind string

const (
	PreviewKindOriginal PreviewKind = "original"
	PreviewKindDesign   PreviewKind = "design"
)

// Valid reports whether k is a known kind.
func (k PreviewKind) Valid() bool {
	return k == PreviewKindOriginal || k == PreviewKindDesign
}

// CacheFileName returns the persisted preview file name for (kind, orderID).
// The format is shared with previously written caches and must not change.
func CacheFileName(kind PreviewKind, orderID int64) string {
	return fmt.Sprintf("cache_%s_%d.webp", kind, orderID)
}

// PreviewTier identifies the source that satisfied a preview request.
type PreviewTier string

const (
	TierLocal     PreviewTier = "local"
	TierRemote    PreviewTier = "remote"
	TierGenerated PreviewTier = "generated"
)

// Preview is a resolved preview ready to be streamed to a client.
type Preview struct {
	Body io.ReadCloser
	Size int64
	Tier PreviewTier
}

// ReconcileJob asks the reconciler to push a locally cached preview to remote
// storage and link it from the owning record. RecordID is the order id for
// original previews and the design id for design previews.
type ReconcileJob struct {
	CacheFile   string
	LogicalName string
	RecordID    int64
	Kind        PreviewKind
}
