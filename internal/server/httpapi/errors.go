package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP statuses. Server-side failures
// are answered with a plain-text body.
func writeError(c *gin.Context, logger logging.Logger, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, common.ErrMalformedIdentifier):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed shareable id", Details: err.Error()})
	case errors.Is(err, common.ErrUnknownExample):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown example", Details: err.Error()})
	case errors.Is(err, common.ErrDocumentGone):
		logger.Warn(c.Request.Context(), "document gone", "error", err)
		c.String(http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error(c.Request.Context(), "document engine timed out", "error", err)
		c.String(http.StatusInternalServerError, "document engine timed out")
	default:
		logger.Error(c.Request.Context(), "request failed", "error", err)
		c.String(http.StatusInternalServerError, err.Error())
	}
}
