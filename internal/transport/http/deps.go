package http

import (
	"github.com/kusina-api/internal/application/auth"
	"github.com/kusina-api/internal/application/menu"
	"github.com/kusina-api/internal/application/order"
	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/application/settings"
	"github.com/kusina-api/internal/application/support"
	"github.com/kusina-api/internal/application/user"
	"github.com/kusina-api/internal/application/verification"
	"github.com/kusina-api/internal/application/voucher"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
)

// UserRepository serves both sign-in and admin account management.
type UserRepository interface {
	auth.UserStore
	user.Repository
}

// Mailer delivers both code emails and support emails.
type Mailer interface {
	auth.EmailDispatcher
	support.Mail
}

// VoucherRepository serves both the voucher endpoints and order placement.
type VoucherRepository interface {
	voucher.Repository
	order.Vouchers
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	OrderRepo   order.Repository
	VoucherRepo VoucherRepository
	MenuRepo    menu.Repository
	SupportRepo support.Repository
	HoursRepo   settings.Repository
	ImageStore  menu.ImageStore
	SMSSender   order.SMSSender // nil disables order status texts
	Mail        Mailer
	Google      auth.GoogleVerifier
	JWTProvider *jwtinfra.Provider
	Codes       *verification.Stores
	Hub         *realtime.Hub
}
