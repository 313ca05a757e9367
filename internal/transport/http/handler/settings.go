package handler

import (
	"net/http"

	"github.com/kusina-api/internal/application/settings"
	"github.com/kusina-api/internal/domain"
)

type SettingsHandler struct {
	svc settings.Service
}

func NewSettingsHandler(svc settings.Service) *SettingsHandler { return &SettingsHandler{svc: svc} }

func (h *SettingsHandler) StoreHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.svc.StoreHours(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StoreHoursEnvelope{Success: true, Hours: hours})
}

func (h *SettingsHandler) UpdateStoreHours(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStoreHoursRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.UpdateStoreHours(r.Context(), req.Hours); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Store hours updated successfully"})
}
