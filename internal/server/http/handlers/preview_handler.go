package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/server/http/dto"
)

// PreviewTierHeader names the tier that served a preview.
const PreviewTierHeader = "X-Preview-Tier"

// PreviewHandler serves previews.
type PreviewHandler struct {
	facade PreviewFacade
}

// NewPreviewHandler constructs PreviewHandler.
func NewPreviewHandler(facade PreviewFacade) *PreviewHandler {
	return &PreviewHandler{facade: facade}
}

// Serve handles GET /api/previews/:kind/:id.
func (h *PreviewHandler) Serve(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	preview, err := h.facade.Preview(c.Request.Context(), orderID, model.PreviewKind(c.Param("kind")))
	if err != nil {
		writeError(c, err)
		return
	}
	defer preview.Body.Close()

	c.DataFromReader(http.StatusOK, preview.Size, "image/webp", preview.Body, map[string]string{
		PreviewTierHeader: string(preview.Tier),
	})
}

// Link handles GET /api/previews/:kind/:id/link.
func (h *PreviewHandler) Link(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := h.facade.PreviewLink(c.Request.Context(), orderID, model.PreviewKind(c.Param("kind")))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LinkResponse{URL: url})
}
