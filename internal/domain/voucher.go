package domain

import "time"

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
	DiscountShipping   = "shipping"
)

type Voucher struct {
	VoucherID     string     `json:"id" dynamodbav:"voucher_id"`
	UserID        string     `json:"user_id" dynamodbav:"user_id"`
	Code          string     `json:"code" dynamodbav:"code"`
	DiscountType  string     `json:"discount_type" dynamodbav:"discount_type"`
	DiscountValue float64    `json:"discount_value" dynamodbav:"discount_value"`
	ExpiresAt     time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	IsUsed        bool       `json:"is_used" dynamodbav:"is_used"`
	UsedAt        *time.Time `json:"used_at,omitempty" dynamodbav:"used_at"`
	CreatedAt     time.Time  `json:"created_at" dynamodbav:"created_at"`
	IsExpired     bool       `json:"is_expired" dynamodbav:"-"`
}

// Expired reports whether the voucher can no longer be redeemed at t.
// A voucher stays valid through the whole of its expiry day.
func (v *Voucher) Expired(t time.Time) bool {
	return t.After(v.ExpiresAt)
}

type CreateVoucherRequest struct {
	UserID        string  `json:"user_id" validate:"required"`
	Code          string  `json:"code" validate:"required,alphanum,max=32"`
	DiscountType  string  `json:"discount_type" validate:"required,oneof=percentage fixed shipping"`
	DiscountValue float64 `json:"discount_value" validate:"required,gt=0"`
	ExpiresAt     string  `json:"expires_at" validate:"required,datetime=2006-01-02"`
}

type ValidateVoucherRequest struct {
	Code       string  `json:"code" validate:"required"`
	OrderTotal float64 `json:"order_total" validate:"gte=0"`
}

// VoucherQuote is a voucher together with the discount it yields for a given order total.
type VoucherQuote struct {
	Voucher            *Voucher `json:"voucher"`
	CalculatedDiscount float64  `json:"calculated_discount"`
}
