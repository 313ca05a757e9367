package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kusina-api/internal/application/order"
	"github.com/kusina-api/internal/domain"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler { return &OrderHandler{svc: svc} }

// List returns the caller's orders as a bare array, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, OrderCreatedEnvelope{
		Success: true,
		Message: "Order created successfully",
		OrderID: o.OrderID,
		Order:   o,
	})
}

func (h *OrderHandler) Overview(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.Overview(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	env := OverviewEnvelope{Success: true, Orders: ov.Orders, Vouchers: ov.Vouchers}
	if env.Orders == nil {
		env.Orders = []domain.Order{}
	}
	if env.Vouchers == nil {
		env.Vouchers = []domain.Voucher{}
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, OrdersEnvelope{Success: true, Orders: orders})
}

func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdatePaymentStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.UpdatePaymentStatus(r.Context(), req.OrderID, req.Status); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Order status updated"})
}

func (h *OrderHandler) UpdateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateDeliveryStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.UpdateDeliveryStatus(r.Context(), req.OrderID, req.DeliveryStatus); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Delivery status updated"})
}

// SetStatus is the path-addressed variant of UpdateDeliveryStatus.
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryStatus string `json:"delivery_status" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	orderID := chi.URLParam(r, "orderId")
	o, err := h.svc.UpdateDeliveryStatus(r.Context(), orderID, req.DeliveryStatus)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderStatusEnvelope{
		Success:        true,
		Message:        "Order status updated",
		OrderID:        o.OrderID,
		DeliveryStatus: o.DeliveryStatus,
	})
}
