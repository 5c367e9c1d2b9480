// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/handler/dto"
)

// Version is reported by the index endpoint.
const Version = "0.1.0"

// Shared boundary messages.
const (
	MsgInvalidBody = "Invalid request body"
	MsgServerError = "Server error"
)

// Handler serves the index and fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index describes the service.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Dandi API",
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, dto.CodeNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, dto.CodeMethod, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps a service error to a response. Errors without a
// kind are logged and answered with a generic message. configStatus is used
// for configuration errors.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, configStatus int) {
	kind := apperror.KindOf(err)
	status := kind.StatusCode()
	message := apperror.MessageOf(err)

	switch kind {
	case apperror.KindUnknown:
		message = MsgServerError
	case apperror.KindConfiguration:
		status = configStatus
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
	}

	writeError(w, status, kind.Code(), message)
}
