package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stylekart/fulfillment-backend/api/routes"
	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/internal/cron"
	"github.com/stylekart/fulfillment-backend/internal/dispatch"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/inventory"
	"github.com/stylekart/fulfillment-backend/internal/notifications"
	"github.com/stylekart/fulfillment-backend/internal/orderitems"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/otp"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
	"github.com/stylekart/fulfillment-backend/pkg/metrics"
	"github.com/stylekart/fulfillment-backend/pkg/migrate"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	inventorySvc, err := inventory.NewService(inventory.NewRepository(gormDB), outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(gormDB), outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(gormDB)

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, outboxSvc, inventorySvc, cfg.Delivery)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	orderItemsSvc, err := orderitems.NewService(ordersRepo, dbClient, outboxSvc, inventorySvc, walletSvc, cfg.Fees.ExpressPickupFee())
	if err != nil {
		logg.Error(context.Background(), "failed to create order items service", err)
		os.Exit(1)
	}

	exchangesRepo := exchanges.NewRepository(gormDB)
	exchangesSvc, err := exchanges.NewService(exchangesRepo, ordersRepo, dbClient, outboxSvc, inventorySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create exchanges service", err)
		os.Exit(1)
	}

	couriersSvc, err := couriers.NewService(couriers.NewRepository(gormDB), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create couriers service", err)
		os.Exit(1)
	}

	// SQLite mode is single-process local dev, so codes can live in
	// memory; everywhere else Redis TTLs handle expiry.
	var otpStore otp.CodeStore = otp.NewRedisStore(redisClient)
	var memoryOTP *otp.MemoryStore
	if cfg.FeatureFlags.UseSQLite {
		memoryOTP = otp.NewMemoryStore()
		otpStore = memoryOTP
	}
	otpSvc, err := otp.NewService(otpStore, cfg.OTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)
	dispatchSvc, err := dispatch.NewService(ordersRepo, exchangesRepo, couriersSvc, otpSvc, cfg.OTP, dbClient, outboxSvc, dispatchMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if memoryOTP != nil {
		sweepJob, err := cron.NewOTPSweepJob(cron.OTPSweepJobParams{Logger: logg, Store: memoryOTP})
		if err != nil {
			logg.Error(ctx, "failed to create otp sweep job", err)
			os.Exit(1)
		}
		go runOTPSweep(ctx, logg, sweepJob, cfg.OTP.SweepInterval)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Orders:        ordersSvc,
			OrderItems:    orderItemsSvc,
			Exchanges:     exchangesSvc,
			Dispatch:      dispatchSvc,
			Couriers:      couriersSvc,
			Wallet:        walletSvc,
			Notifications: notificationsSvc,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func runOTPSweep(ctx context.Context, logg *logger.Logger, job cron.Job, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				logg.Error(ctx, "otp sweep failed", err)
			}
		}
	}
}
