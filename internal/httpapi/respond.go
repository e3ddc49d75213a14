package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-heroes/internal/attachment"
	"github.com/goliatone/go-heroes/internal/codes"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/goliatone/go-heroes/internal/service"
	"github.com/goliatone/go-heroes/query"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondWithJSON writes data as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.From(r.Context()).Error("encode JSON response", logger.Err(err))
	}
}

// RespondWithBytes writes a binary body.
func RespondWithBytes(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.From(r.Context()).Warn("write response", logger.Err(err))
	}
}

// RespondWithError writes a JSON error with a client safe message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, ErrorResponse{
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// RespondWithServiceError maps err to a status code. Unexpected errors are
// logged and answered with a generic 500.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed", logger.Status(status), logger.Err(err))
		RespondWithError(w, r, status, http.StatusText(status))
		return
	}
	logger.From(r.Context()).Debug("request rejected", logger.Status(status), zap.NamedError("reason", err))
	RespondWithError(w, r, status, err.Error())
}

// StatusFor returns the HTTP status of a service error.
func StatusFor(err error) int {
	var (
		fieldErr      *query.FieldResolutionError
		validationErr *service.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateKey):
		return http.StatusConflict
	case errors.As(err, &fieldErr),
		errors.As(err, &validationErr),
		errors.Is(err, codes.ErrUnsupportedFormat),
		errors.Is(err, codes.ErrEmptyText),
		errors.Is(err, attachment.ErrNotImage),
		errors.Is(err, attachment.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
