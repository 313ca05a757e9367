package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kusina-api/internal/domain"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
	"github.com/kusina-api/internal/pkg/validate"
	"github.com/kusina-api/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// AuthEnvelope wraps sign-in and code-issuing responses.
type AuthEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
	Email   string       `json:"email,omitempty"`
	DevCode string       `json:"devCode,omitempty"`
}

// LoginEnvelope answers send-login-code. Admins receive the token directly.
type LoginEnvelope struct {
	Success          bool         `json:"success"`
	SkipVerification bool         `json:"skipVerification"`
	Message          string       `json:"message"`
	Token            string       `json:"token,omitempty"`
	User             *domain.User `json:"user,omitempty"`
	Email            string       `json:"email,omitempty"`
	DevCode          string       `json:"devCode,omitempty"`
}

type UserEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

type UsersEnvelope struct {
	Success    bool          `json:"success"`
	Users      []domain.User `json:"users"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type OrderCreatedEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	OrderID string        `json:"order_id"`
	Order   *domain.Order `json:"order"`
}

type OrdersEnvelope struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

type OverviewEnvelope struct {
	Success  bool             `json:"success"`
	Orders   []domain.Order   `json:"orders"`
	Vouchers []domain.Voucher `json:"vouchers"`
}

type OrderStatusEnvelope struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	OrderID        string `json:"orderId"`
	DeliveryStatus string `json:"delivery_status"`
}

type VoucherEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Voucher *domain.Voucher `json:"voucher"`
}

type VouchersEnvelope struct {
	Success  bool             `json:"success"`
	Vouchers []domain.Voucher `json:"vouchers"`
}

type VoucherQuoteEnvelope struct {
	Success bool `json:"success"`
	*domain.VoucherQuote
}

type MenuItemsEnvelope struct {
	Success bool              `json:"success"`
	Items   []domain.MenuItem `json:"items"`
}

type MenuItemEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	ItemID  string           `json:"itemId"`
	Item    *domain.MenuItem `json:"item,omitempty"`
}

type ImageEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

type TicketCreatedEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId"`
}

type TicketsEnvelope struct {
	Success bool                   `json:"success"`
	Tickets []domain.SupportTicket `json:"tickets"`
}

type StoreHoursEnvelope struct {
	Success bool                `json:"success"`
	Hours   []domain.StoreHours `json:"hours"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

// httpError maps domain sentinels to status codes. Anything else is logged
// and reported as a bare 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTooManyRequests):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeError(w, status, domain.Message(err))
}

// decode reads a JSON body into v and runs its validate tags. It writes the
// 400 response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func requireClaims(w http.ResponseWriter, r *http.Request) (*jwtinfra.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return claims, ok
}
