package realtime

import "time"

// Room names. The prefixes are part of the client contract.
const (
	AdminRoom = "admin-room"

	userRoomPrefix  = "user-"
	orderRoomPrefix = "order-"
)

func UserRoom(userID string) string   { return userRoomPrefix + userID }
func OrderRoom(orderID string) string { return orderRoomPrefix + orderID }

// Server-to-client event names.
const (
	EventNewOrder            = "new-order"
	EventOrderUpdated        = "order-updated"
	EventOrderStatusChanged  = "order-status-changed"
	EventLocationUpdate      = "location-update"
	EventMenuUpdated         = "menu-updated"
	EventVoucherUpdated      = "voucher-updated"
	EventJoinedUserRoom      = "joined-user-room"
	EventTrackingStarted     = "tracking-started"
	EventStatusUpdateSuccess = "status-update-success"
	EventStatusUpdateError   = "status-update-error"
	EventError               = "error"
)

// Mutation actions carried in order, menu and voucher events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// OrderStatusChanged is sent to the order room and the owner's user room.
// LegacyOrderID duplicates OrderID for clients that still read "order_id".
type OrderStatusChanged struct {
	OrderID        string    `json:"orderId"`
	LegacyOrderID  string    `json:"order_id"`
	Status         string    `json:"status,omitempty"`
	PaymentStatus  string    `json:"payment_status,omitempty"`
	DeliveryStatus string    `json:"delivery_status,omitempty"`
	Message        string    `json:"message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewOrderStatusChanged fills both order id spellings.
func NewOrderStatusChanged(orderID string, at time.Time) OrderStatusChanged {
	return OrderStatusChanged{OrderID: orderID, LegacyOrderID: orderID, Timestamp: at.UTC()}
}

// LocationUpdate relays a courier position to everyone tracking the order.
type LocationUpdate struct {
	OrderID   string    `json:"orderId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrder is the admin dashboard summary of a freshly placed order.
type NewOrder struct {
	OrderID        string    `json:"order_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerEmail  string    `json:"customer_email"`
	Total          float64   `json:"total"`
	PaymentStatus  string    `json:"payment_status"`
	PaymentMethod  string    `json:"payment_method"`
	DeliveryStatus string    `json:"delivery_status"`
	DeliveryOption string    `json:"delivery_option"`
	ItemsCount     int       `json:"items_count"`
	VoucherApplied bool      `json:"voucher_applied"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrderUpdated tells admins, or the owning user, that an order record changed.
// Order is set for the owner's copy; admins get the changed status fields only.
type OrderUpdated struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id,omitempty"`
	Action         string `json:"action,omitempty"`
	PaymentStatus  string `json:"payment_status,omitempty"`
	DeliveryStatus string `json:"delivery_status,omitempty"`
	Order          any    `json:"order,omitempty"`
}

// MenuUpdated announces a menu item change to the admin room.
type MenuUpdated struct {
	Action string `json:"action"`
	ItemID string `json:"itemId"`
	Item   any    `json:"item,omitempty"`
}

// VoucherUpdated tells a user that one of their vouchers was created or removed.
type VoucherUpdated struct {
	Action  string `json:"action"`
	UserID  string `json:"user_id"`
	Voucher any    `json:"voucher,omitempty"`
}

// JoinedUserRoom acknowledges join-user.
type JoinedUserRoom struct {
	UserID string `json:"userId"`
	Room   string `json:"room"`
}

// TrackingStarted acknowledges track-order.
type TrackingStarted struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

// StatusUpdateResult answers admin-update-status.
type StatusUpdateResult struct {
	OrderID        string `json:"orderId"`
	DeliveryStatus string `json:"deliveryStatus,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ErrorPayload reports a rejected client event back to its sender.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}
