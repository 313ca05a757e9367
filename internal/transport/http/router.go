package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kusina-api/internal/application/auth"
	"github.com/kusina-api/internal/application/menu"
	"github.com/kusina-api/internal/application/order"
	"github.com/kusina-api/internal/application/settings"
	"github.com/kusina-api/internal/application/support"
	"github.com/kusina-api/internal/application/user"
	"github.com/kusina-api/internal/application/voucher"
	"github.com/kusina-api/internal/config"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/transport/http/handler"
	appmiddleware "github.com/kusina-api/internal/transport/http/middleware"
	"github.com/kusina-api/internal/transport/socket"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// 10 attempts per 5 minutes on sign-in flows, 300 per 10 minutes elsewhere.
	// Both are off in development.
	authRL := limiter(cfg, rate.Every(30*time.Second), 10, "Too many auth attempts, please try again later.")
	apiRL := limiter(cfg, rate.Every(2*time.Second), 300, "Too many requests from this IP, please try again later.")

	authSvc := auth.NewService(auth.ServiceDeps{
		Codes:   deps.Codes,
		Users:   deps.UserRepo,
		Signer:  deps.JWTProvider,
		Google:  deps.Google,
		Mail:    deps.Mail,
		DevMode: cfg.EmailDevMode,
		CodeTTL: cfg.VerificationTTL,
	})
	orderSvc := order.NewService(deps.OrderRepo, deps.VoucherRepo, deps.Hub, deps.SMSSender)
	voucherSvc := voucher.NewService(deps.VoucherRepo, deps.Hub)
	menuSvc := menu.NewService(deps.MenuRepo, deps.ImageStore, deps.Hub)
	userSvc := user.NewService(deps.UserRepo)
	supportSvc := support.NewService(deps.SupportRepo, deps.Mail)
	settingsSvc := settings.NewService(deps.HoursRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	voucherH := handler.NewVoucherHandler(voucherSvc)
	menuH := handler.NewMenuHandler(menuSvc, cfg.MaxUploadBytes)
	userH := handler.NewUserHandler(userSvc)
	supportH := handler.NewSupportHandler(supportSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	socketSrv := socket.NewServer(deps.Hub, orderSvc, deps.JWTProvider, socket.OptionsFromConfig(cfg))

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Handle("/socket", socketSrv)
		r.Get("/menu", menuH.ListPublic)
		r.Get("/store-hours", settingsH.StoreHours)
		r.With(apiRL).Post("/support", supportH.Submit)

		r.Route("/auth", func(r chi.Router) {
			r.With(authRL).Post("/signup", authH.Signup)
			r.Post("/verify-code", authH.VerifySignup)
			r.With(authRL).Post("/resend-code", authH.ResendSignupCode)
			r.With(authRL).Post("/send-login-code", authH.SendLoginCode)
			r.Post("/verify-login-code", authH.VerifyLoginCode)
			r.Post("/google", authH.Google)
			r.With(apiRL).Post("/forgot-password", authH.ForgotPassword)
			r.With(apiRL).Post("/reset-password", authH.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Get("/me", authH.Me)
				r.Put("/update-profile", authH.UpdateProfile)
				r.Post("/password-change/request", authH.RequestPasswordChange)
				r.Post("/password-change/verify", authH.VerifyPasswordChangeCode)
				r.Post("/password-change", authH.ChangePassword)
			})
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/orders", orderH.List)
			r.Post("/create-order", orderH.Create)
			r.Get("/user/overview", orderH.Overview)
			r.Post("/user/vouchers/validate", voucherH.Validate)
			r.Get("/user/vouchers", voucherH.ListMine)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/support", supportH.List)
				r.Post("/support/reply", supportH.Reply)
				r.Patch("/support/{id}/status", supportH.SetStatus)
			})

			// Admin-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/get-all-orders", orderH.ListAll)
				r.Patch("/update-order-status", orderH.UpdatePaymentStatus)
				r.Patch("/update-delivery-status", orderH.UpdateDeliveryStatus)
				r.Post("/orders/{orderId}/status", orderH.SetStatus)

				r.Post("/vouchers", voucherH.Create)
				r.Get("/vouchers", voucherH.ListByUser)
				r.Delete("/vouchers/{id}", voucherH.Delete)

				r.Get("/menu", menuH.ListAll)
				r.Post("/menu", menuH.Create)
				r.Post("/menu/upload-image", menuH.UploadImage)
				r.Patch("/menu/{id}", menuH.Update)
				r.Delete("/menu/{id}", menuH.Delete)

				r.Get("/users", userH.List)
				r.Patch("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)

				r.Put("/store-hours", settingsH.UpdateStoreHours)
			})
		})
	})

	return r
}

func limiter(cfg *config.Config, every rate.Limit, burst int, message string) func(http.Handler) http.Handler {
	if cfg.IsDevelopment() {
		return func(next http.Handler) http.Handler { return next }
	}
	return appmiddleware.NewRateLimiter(every, burst, message).Limit
}
