// Package rest provides the HTTP handlers of the storefront API.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/dkoval/shoply/internal/errors"
	"github.com/dkoval/shoply/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// statusFor maps a domain error to an HTTP status. Insufficient stock
// is reported as 400 rather than 409 because clients treat it as a
// fixable request problem, not a state race.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs and writes the mapped status. Internal
// errors are masked with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "error", err)
		web.RespondError(w, logger, status, "Internal server error")
		return
	}
	logger.WarnContext(r.Context(), "request rejected", "status", status, "error", err)
	web.RespondError(w, logger, status, err.Error())
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		logger.ErrorContext(r.Context(), "failed to validate request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID annotates the logger with the chi request ID.
func loggerWithReqID(logger *slog.Logger, r *http.Request) *slog.Logger {
	return logger.With("request_id", middleware.GetReqID(r.Context()))
}
