package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/pkg/validate"
)

// Client-to-server event names.
const (
	EventJoinUser          = "join-user"
	EventAdminConnect      = "admin-connect"
	EventTrackOrder        = "track-order"
	EventStopTracking      = "stop-tracking"
	EventUpdateLocation    = "update-location"
	EventOrderDelivered    = "order-delivered"
	EventAdminUpdateStatus = "admin-update-status"
)

// OrderUpdater is the order service surface reachable from sockets.
type OrderUpdater interface {
	UpdateDeliveryStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Older clients send snake_case ids, so both spellings are accepted.
type orderRef struct {
	OrderID       string `json:"orderId"`
	LegacyOrderID string `json:"order_id"`
}

func (o orderRef) id() string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.LegacyOrderID
}

type userRef struct {
	UserID       string `json:"userId"`
	LegacyUserID string `json:"user_id"`
}

func (u userRef) id() string {
	if u.UserID != "" {
		return u.UserID
	}
	return u.LegacyUserID
}

type locationPayload struct {
	orderRef
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

type statusPayload struct {
	orderRef
	DeliveryStatus       string `json:"deliveryStatus"`
	LegacyDeliveryStatus string `json:"delivery_status"`
}

func (p statusPayload) status() string {
	if p.DeliveryStatus != "" {
		return p.DeliveryStatus
	}
	return p.LegacyDeliveryStatus
}

type handlerFunc func(ctx context.Context, c *conn, data json.RawMessage) error

// Events dispatches decoded client events against the hub.
type Events struct {
	hub      *realtime.Hub
	orders   OrderUpdater
	handlers map[string]handlerFunc
	now      func() time.Time
}

// NewEvents wires the client event handlers to hub and orders.
func NewEvents(hub *realtime.Hub, orders OrderUpdater) *Events {
	e := &Events{hub: hub, orders: orders, now: time.Now}
	e.handlers = map[string]handlerFunc{
		EventJoinUser:          e.joinUser,
		EventAdminConnect:      e.adminConnect,
		EventTrackOrder:        e.trackOrder,
		EventStopTracking:      e.stopTracking,
		EventUpdateLocation:    e.updateLocation,
		EventOrderDelivered:    e.orderDelivered,
		EventAdminUpdateStatus: e.adminUpdateStatus,
	}
	return e
}

// Handle runs the handler for env. Failures are reported to the sender as an
// error event and never close the connection.
func (e *Events) Handle(ctx context.Context, c *conn, env envelope) {
	h, ok := e.handlers[env.Event]
	if !ok {
		e.reject(c, env.Event, fmt.Errorf("unknown event %q: %w", env.Event, domain.ErrBadRequest))
		return
	}
	if err := h(ctx, c, env.Data); err != nil {
		e.reject(c, env.Event, err)
	}
}

func (e *Events) reject(c *conn, event string, err error) {
	slog.Warn("socket event rejected", "conn_id", c.id, "event", event, "error", err)
	e.hub.EmitToConnection(c.id, realtime.EventError, realtime.ErrorPayload{Event: event, Message: publicMessage(err)})
}

func (e *Events) joinUser(_ context.Context, c *conn, data json.RawMessage) error {
	var p userRef
	if err := decode(data, &p); err != nil {
		return err
	}
	userID := p.id()
	if userID == "" {
		return fmt.Errorf("userId is required: %w", domain.ErrBadRequest)
	}
	if c.identity == nil {
		return errAuthRequired
	}
	if !c.isAdmin() && c.identity.UserID != userID {
		return fmt.Errorf("cannot join another user's room: %w", domain.ErrForbidden)
	}
	room := realtime.UserRoom(userID)
	e.hub.JoinRoom(c.id, room)
	e.hub.EmitToConnection(c.id, realtime.EventJoinedUserRoom, realtime.JoinedUserRoom{UserID: userID, Room: room})
	return nil
}

func (e *Events) adminConnect(_ context.Context, c *conn, _ json.RawMessage) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	e.hub.JoinRoom(c.id, realtime.AdminRoom)
	slog.Info("admin connected", "conn_id", c.id)
	return nil
}

func (e *Events) trackOrder(_ context.Context, c *conn, data json.RawMessage) error {
	orderID, err := decodeOrderID(data)
	if err != nil {
		return err
	}
	e.hub.TrackOrder(c.id, orderID)
	e.hub.EmitToConnection(c.id, realtime.EventTrackingStarted, realtime.TrackingStarted{
		OrderID: orderID,
		Message: "Real-time tracking enabled",
	})
	return nil
}

func (e *Events) stopTracking(_ context.Context, c *conn, data json.RawMessage) error {
	orderID, err := decodeOrderID(data)
	if err != nil {
		return err
	}
	e.hub.StopTracking(c.id, orderID)
	return nil
}

func (e *Events) updateLocation(_ context.Context, c *conn, data json.RawMessage) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var p locationPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	orderID := p.id()
	if orderID == "" {
		return fmt.Errorf("orderId is required: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if !c.location.Allow() {
		return fmt.Errorf("location updates are sent too often: %w", domain.ErrTooManyRequests)
	}
	e.hub.EmitToRoom(realtime.OrderRoom(orderID), realtime.EventLocationUpdate, realtime.LocationUpdate{
		OrderID:   orderID,
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
		Timestamp: e.now().UTC(),
	})
	return nil
}

func (e *Events) orderDelivered(ctx context.Context, c *conn, data json.RawMessage) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	orderID, err := decodeOrderID(data)
	if err != nil {
		return err
	}
	_, err = e.orders.UpdateDeliveryStatus(ctx, orderID, domain.DeliveryDelivered)
	return err
}

// adminUpdateStatus answers with status-update-success or status-update-error
// instead of the generic error event.
func (e *Events) adminUpdateStatus(ctx context.Context, c *conn, data json.RawMessage) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var p statusPayload
	if err := decode(data, &p); err != nil {
		return err
	}
	orderID, status := p.id(), p.status()
	if orderID == "" || status == "" {
		e.hub.EmitToConnection(c.id, realtime.EventStatusUpdateError, realtime.StatusUpdateResult{
			OrderID: orderID,
			Error:   "orderId and deliveryStatus are required",
		})
		return nil
	}
	if _, err := e.orders.UpdateDeliveryStatus(ctx, orderID, status); err != nil {
		slog.Error("socket status update failed", "order_id", orderID, "status", status, "error", err)
		e.hub.EmitToConnection(c.id, realtime.EventStatusUpdateError, realtime.StatusUpdateResult{
			OrderID: orderID,
			Error:   publicMessage(err),
		})
		return nil
	}
	e.hub.EmitToConnection(c.id, realtime.EventStatusUpdateSuccess, realtime.StatusUpdateResult{
		OrderID:        orderID,
		DeliveryStatus: status,
	})
	return nil
}

var (
	errAuthRequired  = fmt.Errorf("authentication required: %w", domain.ErrUnauthorized)
	errAdminRequired = fmt.Errorf("admin role required: %w", domain.ErrForbidden)
)

// requireAdmin admits only connections that presented an admin token.
// Anonymous connections are limited to order tracking.
func requireAdmin(c *conn) error {
	if c.identity == nil {
		return errAuthRequired
	}
	if !c.isAdmin() {
		return errAdminRequired
	}
	return nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("malformed event payload: %w", domain.ErrBadRequest)
	}
	return nil
}

func decodeOrderID(data json.RawMessage) (string, error) {
	var p orderRef
	if err := decode(data, &p); err != nil {
		return "", err
	}
	if p.id() == "" {
		return "", fmt.Errorf("orderId is required: %w", domain.ErrBadRequest)
	}
	return p.id(), nil
}

// publicMessage hides errors that did not come from a domain sentinel.
func publicMessage(err error) string {
	if domain.Known(err) {
		return domain.Message(err)
	}
	return "internal error"
}
