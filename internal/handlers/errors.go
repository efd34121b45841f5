package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-ledger/internal/services"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case services.IsPostingError(err):
		return http.StatusUnprocessableEntity
	case services.IsSeedConflict(err):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrChartNotSeeded):
		return http.StatusNotFound
	case errors.Is(err, services.ErrShiftNotOwned):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrShiftClosed),
		errors.Is(err, services.ErrSaleReturned),
		errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrInvalidPrefix),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrUnknownExport):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected failures are logged
// and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Error interno del servidor"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
