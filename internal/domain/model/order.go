package model

import "time"

// OrderStatus describes order lifecycle. Stored as free text.
type OrderStatus string

const (
	OrderStatusNew OrderStatus = "new"
)

// DesignStatus describes design lifecycle.
type DesignStatus string

const (
	DesignStatusCompleted DesignStatus = "design_completed"
	DesignStatusConverted DesignStatus = "converted"
)

// Order describes a customer submission and its original artifact.
type Order struct {
	ID         int64
	ClientInfo *string
	Status     OrderStatus
	// OriginalPath is the remote path of the original artifact. Empty only
	// while creation is in progress.
	OriginalPath string
	// OriginalPreviewPath is the remote path of the cloud-cached preview.
	OriginalPreviewPath *string
	CreatedAt           time.Time
}

// Design describes the finished artifact produced for an order.
type Design struct {
	ID                int64
	OrderID           int64
	DesignPath        string
	DesignPreviewPath *string
	ConvertedPath     *string
	Status            DesignStatus
	CreatedAt         time.Time
}
