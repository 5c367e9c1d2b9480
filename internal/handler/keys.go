package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dandi/dandi/internal/handler/dto"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/service"
)

// MsgNameRequired is returned when a key is created without a name.
const MsgNameRequired = "Name is required"

// KeyHandler handles API key management endpoints.
type KeyHandler struct {
	svc    *service.KeyService
	logger *slog.Logger
}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler(svc *service.KeyService, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/keys.
func (h *KeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// Create handles POST /api/keys.
func (h *KeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.APIKeyCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgInvalidBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgNameRequired)
		return
	}

	key, err := h.svc.Generate(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

// Update handles PUT /api/keys.
func (h *KeyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.APIKeyUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgInvalidBody)
		return
	}

	key, err := h.svc.Rename(r.Context(), req.ID, req.Name)
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, key)
}

// Delete handles DELETE /api/keys.
func (h *KeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.APIKeyDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeInvalidRequest, MsgInvalidBody)
		return
	}

	if err := h.svc.Revoke(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}
