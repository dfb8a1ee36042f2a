package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/server/http/dto"
)

// pathID parses a positive integer path parameter. It writes 400 and
// returns false on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// statusFor maps domain failures to transport status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrPreviewDisabled):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrInvalidKind), errors.Is(err, domainErrors.ErrMalformedRemotePath):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domainErrors.ErrLinkUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, domainErrors.ErrStorage), errors.Is(err, domainErrors.ErrConversion):
		return http.StatusInternalServerError
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
}
