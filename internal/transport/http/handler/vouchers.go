package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kusina-api/internal/application/voucher"
	"github.com/kusina-api/internal/domain"
)

type VoucherHandler struct {
	svc voucher.Service
}

func NewVoucherHandler(svc voucher.Service) *VoucherHandler { return &VoucherHandler{svc: svc} }

func (h *VoucherHandler) Validate(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.ValidateVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	quote, err := h.svc.Validate(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VoucherQuoteEnvelope{Success: true, VoucherQuote: quote})
}

func (h *VoucherHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	vs, err := h.svc.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeVouchers(w, vs)
}

func (h *VoucherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVoucherRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, VoucherEnvelope{Success: true, Message: "Voucher created successfully", Voucher: v})
}

func (h *VoucherHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	vs, err := h.svc.ListByUser(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeVouchers(w, vs)
}

func (h *VoucherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Voucher deleted successfully"})
}

func writeVouchers(w http.ResponseWriter, vs []domain.Voucher) {
	if vs == nil {
		vs = []domain.Voucher{}
	}
	writeJSON(w, http.StatusOK, VouchersEnvelope{Success: true, Vouchers: vs})
}
