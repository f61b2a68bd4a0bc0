package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crimi5361/IIPEA-BACKEND/internal/services"
)

// respondServiceError translates a typed core error into an HTTP response.
// Unknown errors are logged and reported as 500 without leaking details.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		slog.Error("unexpected error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeInvalidAmount, services.CodeInvalidPercentage,
		services.CodeRejectionReasonRequired, services.CodeInvalidAction:
		status = http.StatusBadRequest
	case services.CodeStudentNotFound, services.CodeWaiverNotFound:
		status = http.StatusNotFound
	case services.CodeOverpayment, services.CodeWaiverAlreadyActive,
		services.CodeWaiverNotPending, services.CodeWaiverExceedsBalance,
		services.CodeGroupCapacityExhausted:
		status = http.StatusConflict
	case services.CodeConcurrencyConflict:
		// Retryable by the caller, never retried here.
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": svcErr.Message, "code": string(svcErr.Code)})
}
