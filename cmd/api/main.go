package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hngo-dev/meshmart-backend/api/controllers"
	"github.com/hngo-dev/meshmart-backend/api/routes"
	"github.com/hngo-dev/meshmart-backend/internal/auth"
	"github.com/hngo-dev/meshmart-backend/internal/coupons"
	"github.com/hngo-dev/meshmart-backend/internal/credit"
	"github.com/hngo-dev/meshmart-backend/internal/inventory"
	"github.com/hngo-dev/meshmart-backend/internal/notifications"
	"github.com/hngo-dev/meshmart-backend/internal/orders"
	"github.com/hngo-dev/meshmart-backend/internal/products"
	"github.com/hngo-dev/meshmart-backend/internal/settlement"
	"github.com/hngo-dev/meshmart-backend/internal/users"
	"github.com/hngo-dev/meshmart-backend/internal/wallet"
	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/db"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/metrics"
	"github.com/hngo-dev/meshmart-backend/pkg/migrate"
	"github.com/hngo-dev/meshmart-backend/pkg/outbox"
	"github.com/hngo-dev/meshmart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	walletRepo := wallet.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	creditRepo := credit.NewRepository(gormDB)
	couponsRepo := coupons.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	engine, err := settlement.NewEngine(usersRepo, walletRepo, cfg.Settlement, logg, settlementMetrics)
	if err != nil {
		fatal(logg, "failed to create settlement engine", err)
	}
	adjuster, err := inventory.NewAdjuster(productsRepo, logg)
	if err != nil {
		fatal(logg, "failed to create inventory adjuster", err)
	}
	couponsService, err := coupons.NewService(couponsRepo)
	if err != nil {
		fatal(logg, "failed to create coupons service", err)
	}
	creditService, err := credit.NewService(creditRepo, usersRepo)
	if err != nil {
		fatal(logg, "failed to create credit service", err)
	}
	notifyService, err := notifications.NewService(notificationsRepo, cfg.Settlement, logg)
	if err != nil {
		fatal(logg, "failed to create notifications service", err)
	}
	walletService, err := wallet.NewService(walletRepo, dbClient, outboxService, logg, settlementMetrics)
	if err != nil {
		fatal(logg, "failed to create wallet service", err)
	}
	ordersService, err := orders.NewService(
		ordersRepo,
		productsRepo,
		adjuster,
		engine,
		couponsService,
		creditService,
		notifyService,
		dbClient,
		outboxService,
		logg,
		settlementMetrics,
	)
	if err != nil {
		fatal(logg, "failed to create orders service", err)
	}
	authService, err := auth.NewService(usersRepo, cfg.JWT)
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:  cfg,
			Logger:  logg,
			Redis:   redisClient,
			Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			AuthService:   authService,
			OrdersService: ordersService,
			WalletService: walletService,
			CreditService: creditService,
			CouponService: couponsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
