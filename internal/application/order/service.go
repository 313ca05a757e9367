package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/pkg/id"
)

const (
	// AdminListLimit caps the admin order list.
	AdminListLimit = 500
	// OverviewOrders is how many recent orders the user overview shows.
	OverviewOrders = 3

	defaultDeliveryOption = "delivery"
	defaultPaymentMethod  = "card"
)

type Repository interface {
	Create(ctx context.Context, o *domain.Order) error
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
	Update(ctx context.Context, orderID string, updates map[string]interface{}) (*domain.Order, error)
}

// Vouchers is what order placement needs from the voucher store.
type Vouchers interface {
	ListByUser(ctx context.Context, userID string, unusedOnly bool) ([]domain.Voucher, error)
	MarkUsed(ctx context.Context, userID, code string) error
}

// Broadcaster delivers realtime events to a room.
type Broadcaster interface {
	EmitToRoom(room, event string, data any) int
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Overview is the customer dashboard: latest orders and redeemable vouchers.
type Overview struct {
	Orders   []domain.Order   `json:"orders"`
	Vouchers []domain.Voucher `json:"vouchers"`
}

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Overview(ctx context.Context, userID string) (*Overview, error)
	UpdatePaymentStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
	UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type service struct {
	repo     Repository
	vouchers Vouchers
	hub      Broadcaster
	sms      SMSSender
	now      func() time.Time
}

// NewService wires the order service. sms may be nil to disable text updates.
func NewService(repo Repository, vouchers Vouchers, hub Broadcaster, sms SMSSender) Service {
	return &service{repo: repo, vouchers: vouchers, hub: hub, sms: sms, now: time.Now}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	now := s.now().UTC()
	o := &domain.Order{
		OrderID:             id.NewOrderID(),
		UserID:              userID,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryCoordinates: req.DeliveryCoordinates,
		Items:               req.Items,
		Subtotal:            req.Subtotal,
		DeliveryFee:         req.DeliveryFee,
		Tax:                 req.Tax,
		Total:               req.Total,
		DeliveryOption:      orDefault(req.DeliveryOption, defaultDeliveryOption),
		PaymentMethod:       orDefault(req.PaymentMethod, defaultPaymentMethod),
		PaymentStatus:       orDefault(req.PaymentStatus, domain.PaymentPending),
		DeliveryStatus:      domain.DeliveryPlaced,
		PaymentIntentID:     req.PaymentIntentID,
		PaymentSourceID:     req.PaymentSourceID,
		VoucherDiscount:     req.VoucherDiscount,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		code := strings.ToUpper(*req.VoucherCode)
		o.VoucherCode = &code
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	slog.Info("order created", "order_id", o.OrderID, "user_id", userID, "total", o.Total)

	if o.VoucherCode != nil {
		if err := s.vouchers.MarkUsed(ctx, userID, *o.VoucherCode); err != nil {
			slog.Warn("failed to mark voucher used", "order_id", o.OrderID, "code", *o.VoucherCode, "err", err)
		}
	}

	s.hub.EmitToRoom(realtime.AdminRoom, realtime.EventNewOrder, realtime.NewOrder{
		OrderID:        o.OrderID,
		CustomerName:   o.CustomerName,
		CustomerEmail:  o.CustomerEmail,
		Total:          o.Total,
		PaymentStatus:  o.PaymentStatus,
		PaymentMethod:  o.PaymentMethod,
		DeliveryStatus: o.DeliveryStatus,
		DeliveryOption: o.DeliveryOption,
		ItemsCount:     len(o.Items),
		VoucherApplied: o.VoucherCode != nil,
		CreatedAt:      o.CreatedAt,
	})
	s.hub.EmitToRoom(realtime.UserRoom(userID), realtime.EventOrderUpdated, realtime.OrderUpdated{
		OrderID: o.OrderID,
		UserID:  userID,
		Action:  realtime.ActionCreated,
		Order:   o,
	})
	return o, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID, 0)
}

func (s *service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListRecent(ctx, AdminListLimit)
}

func (s *service) Overview(ctx context.Context, userID string) (*Overview, error) {
	orders, err := s.repo.ListByUser(ctx, userID, OverviewOrders)
	if err != nil {
		return nil, err
	}
	vouchers, err := s.vouchers.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range vouchers {
		vouchers[i].IsExpired = vouchers[i].Expired(now)
	}
	return &Overview{Orders: orders, Vouchers: vouchers}, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if orderID == "" || status == "" {
		return nil, fmt.Errorf("missing order_id or status: %w", domain.ErrBadRequest)
	}
	o, err := s.repo.Update(ctx, orderID, map[string]interface{}{"payment_status": status})
	if err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(realtime.AdminRoom, realtime.EventOrderUpdated, realtime.OrderUpdated{
		OrderID:       orderID,
		PaymentStatus: status,
	})
	changed := realtime.NewOrderStatusChanged(orderID, s.now())
	changed.PaymentStatus = status
	s.emitStatusChanged(o, changed)
	return o, nil
}

func (s *service) UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if orderID == "" || status == "" {
		return nil, fmt.Errorf("missing order_id or delivery_status: %w", domain.ErrBadRequest)
	}
	if !domain.ValidDeliveryStatus(status) {
		return nil, fmt.Errorf("invalid delivery status %q: %w", status, domain.ErrBadRequest)
	}
	o, err := s.repo.Update(ctx, orderID, map[string]interface{}{"delivery_status": status})
	if err != nil {
		return nil, err
	}

	s.hub.EmitToRoom(realtime.AdminRoom, realtime.EventOrderUpdated, realtime.OrderUpdated{
		OrderID:        orderID,
		DeliveryStatus: status,
	})
	changed := realtime.NewOrderStatusChanged(orderID, s.now())
	changed.Status = status
	changed.DeliveryStatus = status
	s.emitStatusChanged(o, changed)

	s.textCustomer(ctx, o)
	return o, nil
}

// emitStatusChanged notifies order trackers and the owning user.
func (s *service) emitStatusChanged(o *domain.Order, payload realtime.OrderStatusChanged) {
	s.hub.EmitToRoom(realtime.OrderRoom(o.OrderID), realtime.EventOrderStatusChanged, payload)
	if o.UserID != "" {
		s.hub.EmitToRoom(realtime.UserRoom(o.UserID), realtime.EventOrderStatusChanged, payload)
	}
}

func (s *service) textCustomer(ctx context.Context, o *domain.Order) {
	if s.sms == nil || o.CustomerPhone == "" {
		return
	}
	var msg string
	switch o.DeliveryStatus {
	case domain.DeliveryDelivering:
		msg = fmt.Sprintf("Kusina: your order %s is on its way!", o.OrderID)
	case domain.DeliveryDelivered:
		msg = fmt.Sprintf("Kusina: your order %s has been delivered. Enjoy your meal!", o.OrderID)
	default:
		return
	}
	if err := s.sms.SendSMS(ctx, o.CustomerPhone, msg); err != nil {
		slog.Warn("failed to send order sms", "order_id", o.OrderID, "err", err)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
