package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kusina-api/internal/application/order"
	"github.com/kusina-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderSvc struct{ mock.Mock }

func (m *mockOrderSvc) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, userID, req)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderSvc) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderSvc) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderSvc) Overview(ctx context.Context, userID string) (*order.Overview, error) {
	args := m.Called(ctx, userID)
	if o, _ := args.Get(0).(*order.Overview); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderSvc) UpdatePaymentStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderSvc) UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestOrderList_EmptyIsArray(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockOrderSvc{}
	svc.On("ListForUser", mock.Anything, "u1").Return(nil, nil)
	h := NewOrderHandler(svc)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, bearerReq(t, p, http.MethodGet, "/api/orders", "u1", domain.RoleCustomer, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestOrderCreate_UsesCallerAsOwner(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockOrderSvc{}
	req := domain.CreateOrderRequest{
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		Items:         []domain.OrderItem{{ItemID: "m1", Name: "Adobo", Price: 150, Quantity: 2}},
		Subtotal:      300,
		Total:         300,
	}
	svc.On("Create", mock.Anything, "u1", req).Return(&domain.Order{OrderID: "KK01", UserID: "u1"}, nil)
	h := NewOrderHandler(svc)

	body, _ := json.Marshal(req)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, bearerReq(t, p, http.MethodPost, "/api/create-order", "u1", domain.RoleCustomer, body))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp OrderCreatedEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "KK01", resp.OrderID)
	svc.AssertExpectations(t)
}

func TestOrderCreate_RejectsEmptyCart(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockOrderSvc{}
	h := NewOrderHandler(svc)

	body, _ := json.Marshal(domain.CreateOrderRequest{CustomerName: "Ana", CustomerEmail: "ana@example.com"})
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, bearerReq(t, p, http.MethodPost, "/api/create-order", "u1", domain.RoleCustomer, body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateDeliveryStatus_InvalidStatus(t *testing.T) {
	svc := &mockOrderSvc{}
	svc.On("UpdateDeliveryStatus", mock.Anything, "KK01", "lost").
		Return(nil, fmt.Errorf("invalid delivery status %q: %w", "lost", domain.ErrBadRequest))
	h := NewOrderHandler(svc)

	body := jsonBody(t, domain.UpdateDeliveryStatusRequest{OrderID: "KK01", DeliveryStatus: "lost"})
	rr := httptest.NewRecorder()
	h.UpdateDeliveryStatus(rr, httptest.NewRequest(http.MethodPatch, "/api/admin/update-delivery-status", body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSetStatus_ReadsOrderIDFromPath(t *testing.T) {
	svc := &mockOrderSvc{}
	svc.On("UpdateDeliveryStatus", mock.Anything, "KK01", domain.DeliveryDelivering).
		Return(&domain.Order{OrderID: "KK01", DeliveryStatus: domain.DeliveryDelivering}, nil)
	h := NewOrderHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/api/admin/orders/KK01/status", jsonBody(t, map[string]string{"delivery_status": "delivering"}))
	rr := httptest.NewRecorder()
	h.SetStatus(rr, withChiParam(r, "orderId", "KK01"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp OrderStatusEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "KK01", resp.OrderID)
	assert.Equal(t, "delivering", resp.DeliveryStatus)
}

func TestSetStatus_UnknownOrder(t *testing.T) {
	svc := &mockOrderSvc{}
	svc.On("UpdateDeliveryStatus", mock.Anything, "KK404", domain.DeliveryPreparing).
		Return(nil, fmt.Errorf("order not found: %w", domain.ErrNotFound))
	h := NewOrderHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/api/admin/orders/KK404/status", jsonBody(t, map[string]string{"delivery_status": "preparing"}))
	rr := httptest.NewRecorder()
	h.SetStatus(rr, withChiParam(r, "orderId", "KK404"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOverview(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockOrderSvc{}
	svc.On("Overview", mock.Anything, "u1").Return(&order.Overview{Orders: []domain.Order{{OrderID: "KK01"}}}, nil)
	h := NewOrderHandler(svc)

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Overview), rr, bearerReq(t, p, http.MethodGet, "/api/user/overview", "u1", domain.RoleCustomer, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp["orders"], 1)
	assert.Equal(t, []interface{}{}, resp["vouchers"])
}
