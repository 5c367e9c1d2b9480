package handler

import (
	"log/slog"
	"net/http"

	"github.com/dandi/dandi/internal/auth"
	"github.com/dandi/dandi/internal/handler/dto"
	"github.com/dandi/dandi/internal/service"
)

// Key check messages.
const (
	MsgAPIKeyRequired = "API key required"
	MsgInvalidAPIKey  = "Invalid API key"
)

// ProtectedHandler validates API keys presented by clients.
type ProtectedHandler struct {
	keys   *service.KeyService
	logger *slog.Logger
}

// NewProtectedHandler creates a new ProtectedHandler.
func NewProtectedHandler(keys *service.KeyService, logger *slog.Logger) *ProtectedHandler {
	return &ProtectedHandler{keys: keys, logger: logger}
}

// Validate handles POST /api/protected.
func (h *ProtectedHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ProtectedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgInvalidBody)
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgAPIKeyRequired)
		return
	}

	valid, err := h.keys.Validate(r.Context(), req.APIKey)
	if err != nil {
		h.logger.Error("key validation failed",
			slog.String("key", auth.MaskKey(req.APIKey)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, dto.CodeInternal, MsgServerError)
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, dto.CodeUnauthorized, MsgInvalidAPIKey)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
