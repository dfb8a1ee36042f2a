package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/printshop/internal/server/http/dto"
)

// DesignHandler manages design endpoints of an order.
type DesignHandler struct {
	facade DesignFacade
}

// NewDesignHandler constructs DesignHandler.
func NewDesignHandler(facade DesignFacade) *DesignHandler {
	return &DesignHandler{facade: facade}
}

// Upload handles POST /api/orders/:id/design.
func (h *DesignHandler) Upload(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

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

	design, err := h.facade.UploadDesign(c.Request.Context(), orderID, header.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDesignResponse(*design))
}

// Convert handles POST /api/orders/:id/convert.
func (h *DesignHandler) Convert(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	design, err := h.facade.ConvertDesign(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDesignResponse(*design))
}
