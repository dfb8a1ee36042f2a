package dto

import "time"

// OrderResponse is the order status payload.
type OrderResponse struct {
	ID                  int64           `json:"id"`
	ClientInfo          *string         `json:"client_info"`
	Status              string          `json:"status"`
	OriginalPath        string          `json:"original_path"`
	OriginalPreviewPath *string         `json:"original_preview_path"`
	CreatedAt           time.Time       `json:"created_at"`
	Design              *DesignResponse `json:"design,omitempty"`
}

// DesignResponse describes the latest design of an order.
type DesignResponse struct {
	ID                int64     `json:"id"`
	OrderID           int64     `json:"order_id"`
	DesignPath        string    `json:"design_path"`
	DesignPreviewPath *string   `json:"design_preview_path"`
	ConvertedPath     *string   `json:"converted_path"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
