package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/app/auth"
	"github.com/stockroom-app/stockroom/internal/domain"
)

// ─── Error Mapping ──────────────────────────────────────────────────────────

// statusFor maps a service error to an HTTP status and error type.
func statusFor(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrStockLimit):
		return http.StatusConflict, "stock_limit"
	case errors.Is(err, domain.ErrProductReferenced):
		return http.StatusConflict, "product_referenced"
	case errors.Is(err, domain.ErrQuantityLocked):
		return http.StatusConflict, "quantity_locked"
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError writes err with its mapped status. Internal errors are
// logged and their detail is not sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, typ := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeErrorType(w, status, msg, typ)
}
