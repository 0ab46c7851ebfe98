package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// errorStatuses maps domain sentinel errors to HTTP status codes, checked in order
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidRequest, http.StatusBadRequest},
	{domain.ErrInvalidBarcode, http.StatusBadRequest},
	{domain.ErrUnsupportedImage, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrProductNotFound, http.StatusNotFound},
	{domain.ErrHistoryEntryNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrProfileIncomplete, http.StatusUnprocessableEntity},
	{domain.ErrNoBarcode, http.StatusUnprocessableEntity},
	{domain.ErrNoText, http.StatusUnprocessableEntity},
	{domain.ErrRateLimited, http.StatusTooManyRequests},
	{domain.ErrProductAPIFailure, http.StatusBadGateway},
	{domain.ErrAnalysisFailed, http.StatusBadGateway},
}

// statusFor returns the HTTP status and client message for err.
// Upstream and internal failures hide their details behind the sentinel text.
func statusFor(err error) (int, string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Message
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			if e.status >= http.StatusInternalServerError {
				return e.status, e.err.Error()
			}
			return e.status, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// respondError writes err as a JSON error body and logs server-side failures
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}
