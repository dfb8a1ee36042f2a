package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable file"})
		return
	}
	defer file.Close()

	var clientInfo *string
	if v := strings.TrimSpace(c.PostForm("client_info")); v != "" {
		clientInfo = &v
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), clientInfo, header.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order, nil))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, design, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order, design))
}

func toOrderResponse(order model.Order, design *model.Design) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                  order.ID,
		ClientInfo:          order.ClientInfo,
		Status:              string(order.Status),
		OriginalPath:        order.OriginalPath,
		OriginalPreviewPath: order.OriginalPreviewPath,
		CreatedAt:           order.CreatedAt,
	}
	if design != nil {
		d := toDesignResponse(*design)
		resp.Design = &d
	}
	return resp
}

func toDesignResponse(design model.Design) dto.DesignResponse {
	return dto.DesignResponse{
		ID:                design.ID,
		OrderID:           design.OrderID,
		DesignPath:        design.DesignPath,
		DesignPreviewPath: design.DesignPreviewPath,
		ConvertedPath:     design.ConvertedPath,
		Status:            string(design.Status),
		CreatedAt:         design.CreatedAt,
	}
}
