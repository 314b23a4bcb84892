package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hngo-dev/meshmart-backend/api/controllers"
	"github.com/hngo-dev/meshmart-backend/api/middleware"
	"github.com/hngo-dev/meshmart-backend/internal/auth"
	"github.com/hngo-dev/meshmart-backend/internal/coupons"
	"github.com/hngo-dev/meshmart-backend/internal/credit"
	"github.com/hngo-dev/meshmart-backend/internal/orders"
	"github.com/hngo-dev/meshmart-backend/internal/wallet"
	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/enums"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Redis   *redis.Client
	Metrics http.Handler

	// Readiness probes, keyed by dependency name.
	Pingers map[string]controllers.Pinger

	AuthService   auth.Service
	OrdersService orders.Service
	WalletService wallet.Service
	CreditService credit.Service
	CouponService coupons.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Pingers))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(p.OrdersService, logg))
			r.Get("/", controllers.OrderListMine(p.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(p.OrdersService, logg))
			r.Post("/{orderId}/pay", controllers.OrderPay(p.OrdersService, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Patch("/{orderId}/status", controllers.OrderUpdateStatus(p.OrdersService, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleSeller), logg))
			r.Get("/orders", controllers.OrderListSeller(p.OrdersService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleSeller), logg))
			r.Get("/", controllers.SellerWalletDetail(p.WalletService, logg))
			r.Get("/stats", controllers.SellerWalletStats(p.WalletService, logg))
			r.Post("/withdrawals", controllers.WithdrawalCreate(p.WalletService, logg))
			r.Get("/withdrawals", controllers.WithdrawalListMine(p.WalletService, logg))
		})

		r.Route("/credit", func(r chi.Router) {
			r.Get("/balance", controllers.CreditBalance(p.CreditService, logg))
			r.Get("/transactions", controllers.CreditHistory(p.CreditService, logg))
		})

		r.Post("/coupons/validate", controllers.CouponValidate(p.CouponService, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Get("/wallet", controllers.AdminWalletDetail(p.WalletService, logg))
			r.Get("/wallet/stats", controllers.AdminWalletStats(p.WalletService, logg))
			r.Get("/wallet/transactions", controllers.AdminTransactionList(p.WalletService, logg))
			r.Get("/withdrawals", controllers.AdminWithdrawalList(p.WalletService, logg))
			r.Post("/withdrawals/{requestId}/approve", controllers.AdminWithdrawalApprove(p.WalletService, logg))
			r.Post("/withdrawals/{requestId}/reject", controllers.AdminWithdrawalReject(p.WalletService, logg))
			r.Post("/coupons", controllers.CouponCreate(p.CouponService, logg))
			r.Get("/coupons", controllers.CouponList(p.CouponService, logg))
		})
	})

	return r
}
