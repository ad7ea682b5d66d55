package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/forgeline/internal/archive"
	"github.com/fjod/forgeline/internal/cart"
	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/checkout"
	"github.com/fjod/forgeline/internal/relay"
	"github.com/fjod/forgeline/internal/session"
	"github.com/fjod/forgeline/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error      string               `json:"error"`
	Code       string               `json:"code,omitempty"`
	Details    string               `json:"details,omitempty"`
	Violations []checkout.Violation `json:"violations,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts domain errors to HTTP status codes
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "validation failed",
			Code:       "validation_failed",
			Details:    err.Error(),
			Violations: verr.Violations,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, cart.ErrProductNotFound), errors.Is(err, catalog.ErrProductNotFound):
		httpStatus = http.StatusNotFound
		code = "product_not_found"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus = http.StatusConflict
		code = "empty_cart"
	case errors.Is(err, checkout.ErrIllegalTransition):
		httpStatus = http.StatusConflict
		code = "illegal_transition"
	case errors.Is(err, checkout.ErrEmissionPending):
		httpStatus = http.StatusConflict
		code = "emission_pending"
	case errors.Is(err, checkout.ErrInvalidPaymentMethod):
		httpStatus = http.StatusUnprocessableEntity
		code = "invalid_payment_method"
	case errors.Is(err, checkout.ErrRelayFailure),
		errors.Is(err, relay.ErrRejected),
		errors.Is(err, relay.ErrUnavailable):
		httpStatus = http.StatusBadGateway
		code = "relay_failure"
	case errors.Is(err, catalog.ErrInvalidQuery):
		httpStatus = http.StatusBadRequest
		code = "invalid_query"
	case errors.Is(err, archive.ErrInvalidDocument):
		httpStatus = http.StatusBadRequest
		code = "invalid_document"
	case errors.Is(err, session.ErrInvalidID):
		httpStatus = http.StatusBadRequest
		code = "invalid_session"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
