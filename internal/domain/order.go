package domain

import "time"

const (
	DeliveryPlaced     = "placed"
	DeliveryPreparing  = "preparing"
	DeliveryDelivering = "delivering"
	DeliveryDelivered  = "delivered"
	DeliveryCancelled  = "cancelled"

	PaymentPending = "pending"
)

// ValidDeliveryStatus reports whether s is one of the known delivery states.
func ValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryPlaced, DeliveryPreparing, DeliveryDelivering, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ItemID   string  `json:"id" dynamodbav:"item_id"`
	Name     string  `json:"name" dynamodbav:"name"`
	Price    float64 `json:"price" dynamodbav:"price"`
	Quantity int     `json:"quantity" dynamodbav:"quantity"`
}

type Order struct {
	OrderID             string      `json:"order_id" dynamodbav:"order_id"`
	UserID              string      `json:"user_id" dynamodbav:"user_id"`
	CustomerName        string      `json:"customer_name" dynamodbav:"customer_name"`
	CustomerEmail       string      `json:"customer_email" dynamodbav:"customer_email"`
	CustomerPhone       string      `json:"customer_phone" dynamodbav:"customer_phone"`
	DeliveryAddress     *string     `json:"delivery_address,omitempty" dynamodbav:"delivery_address"`
	DeliveryCoordinates *string     `json:"delivery_coordinates,omitempty" dynamodbav:"delivery_coordinates"`
	Items               []OrderItem `json:"items" dynamodbav:"items"`
	Subtotal            float64     `json:"subtotal" dynamodbav:"subtotal"`
	DeliveryFee         float64     `json:"delivery_fee" dynamodbav:"delivery_fee"`
	Tax                 float64     `json:"tax" dynamodbav:"tax"`
	Total               float64     `json:"total" dynamodbav:"total"`
	DeliveryOption      string      `json:"delivery_option" dynamodbav:"delivery_option"`
	PaymentMethod       string      `json:"payment_method" dynamodbav:"payment_method"`
	PaymentStatus       string      `json:"payment_status" dynamodbav:"payment_status"`
	DeliveryStatus      string      `json:"delivery_status" dynamodbav:"delivery_status"`
	PaymentIntentID     *string     `json:"payment_intent_id,omitempty" dynamodbav:"payment_intent_id"`
	PaymentSourceID     *string     `json:"payment_source_id,omitempty" dynamodbav:"payment_source_id"`
	VoucherCode         *string     `json:"voucher_code,omitempty" dynamodbav:"voucher_code"`
	VoucherDiscount     float64     `json:"voucher_discount" dynamodbav:"voucher_discount"`
	CreatedAt           time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateOrderRequest struct {
	CustomerName        string      `json:"customer_name" validate:"required"`
	CustomerEmail       string      `json:"customer_email" validate:"required,email"`
	CustomerPhone       string      `json:"customer_phone"`
	DeliveryAddress     *string     `json:"delivery_address"`
	DeliveryCoordinates *string     `json:"delivery_coordinates"`
	Items               []OrderItem `json:"items" validate:"required,min=1,dive"`
	Subtotal            float64     `json:"subtotal" validate:"gte=0"`
	DeliveryFee         float64     `json:"delivery_fee" validate:"gte=0"`
	Tax                 float64     `json:"tax" validate:"gte=0"`
	Total               float64     `json:"total" validate:"gte=0"`
	DeliveryOption      string      `json:"delivery_option"`
	PaymentMethod       string      `json:"payment_method"`
	PaymentStatus       string      `json:"payment_status"`
	PaymentIntentID     *string     `json:"payment_intent_id"`
	PaymentSourceID     *string     `json:"payment_source_id"`
	VoucherCode         *string     `json:"voucher_code"`
	VoucherDiscount     float64     `json:"voucher_discount" validate:"gte=0"`
}

type UpdatePaymentStatusRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type UpdateDeliveryStatusRequest struct {
	OrderID        string `json:"order_id" validate:"required"`
	DeliveryStatus string `json:"delivery_status" validate:"required"`
}
