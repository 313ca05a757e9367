package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kusina-api/internal/application/support"
	"github.com/kusina-api/internal/domain"
)

type SupportHandler struct {
	svc support.Service
}

func NewSupportHandler(svc support.Service) *SupportHandler { return &SupportHandler{svc: svc} }

// Submit is the public contact form.
func (h *SupportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitTicketRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TicketCreatedEnvelope{
		Success:  true,
		Message:  "Your message has been sent successfully. We'll get back to you soon!",
		TicketID: t.TicketID,
	})
}

func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []domain.SupportTicket{}
	}
	writeJSON(w, http.StatusOK, TicketsEnvelope{Success: true, Tickets: tickets})
}

func (h *SupportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req domain.ReplyTicketRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.Reply(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Reply sent successfully via email"})
}

func (h *SupportHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.TicketStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Status updated successfully"})
}
