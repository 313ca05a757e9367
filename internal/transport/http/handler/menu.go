package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kusina-api/internal/application/menu"
	"github.com/kusina-api/internal/domain"
)

type MenuHandler struct {
	svc       menu.Service
	maxUpload int64
}

// NewMenuHandler serves the menu endpoints. Image uploads larger than
// maxUpload bytes are rejected.
func NewMenuHandler(svc menu.Service, maxUpload int64) *MenuHandler {
	return &MenuHandler{svc: svc, maxUpload: maxUpload}
}

func (h *MenuHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPublic(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeItems(w, items)
}

func (h *MenuHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeItems(w, items)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.MenuItemInput
	if !decode(w, r, &req) {
		return
	}
	item, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MenuItemEnvelope{
		Success: true,
		Message: "Menu item created successfully",
		ItemID:  item.ItemID,
		Item:    item,
	})
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateMenuItemRequest
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	item, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MenuItemEnvelope{Success: true, Message: "Menu item updated successfully", ItemID: id, Item: item})
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MenuItemEnvelope{Success: true, Message: "Menu item deleted successfully", ItemID: id})
}

// UploadImage accepts a multipart form with an "image" file and an optional
// "itemName" used to name the stored object.
func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for the other form fields and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusBadRequest, h.tooLarge())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image file uploaded")
		return
	}
	defer f.Close()
	if header.Size > h.maxUpload {
		writeError(w, http.StatusBadRequest, h.tooLarge())
		return
	}

	url, err := h.svc.UploadImage(r.Context(), r.FormValue("itemName"), header.Header.Get("Content-Type"), f)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageEnvelope{Success: true, Message: "Image uploaded successfully", ImageURL: url})
}

func (h *MenuHandler) tooLarge() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxUpload>>20)
}

func writeItems(w http.ResponseWriter, items []domain.MenuItem) {
	if items == nil {
		items = []domain.MenuItem{}
	}
	writeJSON(w, http.StatusOK, MenuItemsEnvelope{Success: true, Items: items})
}
