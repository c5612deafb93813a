// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	mainLog := logger.Component(appLogger, "main")

	mainLog.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg, logger.Component(appLogger, "postgres"))
	if err != nil {
		mainLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logger.Component(appLogger, "redis"))
	if err != nil {
		mainLog.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	catalog, err := product.NewCatalog(product.DefaultProducts())
	if err != nil {
		mainLog.WithError(err).Fatal("Invalid product catalog")
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logger.Component(appLogger, "migration"))

	if err := migration.RunAutoMigrations(); err != nil {
		mainLog.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		mainLog.WithError(err).Warn("Index creation failed")
	}

	// Seed demo history in development
	if cfg.IsDevelopment() {
		if err := migration.SeedDemoOrders(cfg.App.DemoUserID, catalog, cfg.Pricing, cfg.Checkout.DeliveryDays); err != nil {
			mainLog.WithError(err).Warn("Data seeding failed")
		}
		migration.GetTableInfo()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cart sessions
	persister := cart.NewRedisPersister(redisClient.GetClient(), cfg.Checkout.CartTTL)
	sessions := cart.NewSessions(persister, logger.Component(appLogger, "cart"), cfg.Checkout.SessionIdleTimeout)
	go sessions.Run(ctx)

	cartService := cart.NewService(sessions, catalog, logger.Component(appLogger, "cart"))

	// Order emails outlive the signal so requests still draining can queue them
	mailer := email.NewService(cfg.Email, cfg.App, logger.Component(appLogger, "email"))
	mailCtx, stopMailer := context.WithCancel(context.Background())
	mailerDone := make(chan struct{})
	go func() {
		mailer.Run(mailCtx)
		close(mailerDone)
	}()

	orderService := order.NewService(
		order.NewGormRepository(db.GetDB()),
		order.NewRedisConfirmationStore(redisClient.GetClient(), cfg.Checkout.ConfirmationTTL),
		cfg.Checkout.DeliveryDays,
		logger.Component(appLogger, "order"),
	).WithNotifier(mailer)

	pricing := checkout.PricingFromConfig(cfg.Pricing)
	gateway := checkout.NewBreakerGateway(
		checkout.NewSimulatedGateway(cfg.Checkout.PaymentDelay),
		cfg.Checkout.BreakerMaxFailures,
		cfg.Checkout.BreakerOpenDuration,
		logger.Component(appLogger, "payment"),
	)

	checkoutService := checkout.NewService(
		cartService,
		checkout.NewRedisDraftStore(redisClient.GetClient(), cfg.Checkout.DraftTTL),
		orderService,
		gateway,
		pricing,
		logger.Component(appLogger, "checkout"),
	)

	deps := &routes.Dependencies{
		Config:   cfg,
		Logger:   appLogger,
		Verifier: auth.NewTokenVerifier(cfg.Identity),
		Catalog:  catalog,
		Carts:    cartService,
		Checkout: checkoutService,
		Orders:   orderService,
		Receipts: pdf.NewService(cfg.App),
		Pricing:  pricing,
		Payments: gateway,
	}

	server := http.NewServer(cfg, deps, redisClient.GetClient(), map[string]http.HealthChecker{
		"database": db,
		"redis":    redisClient,
	})

	mainLog.Info("✅ All systems operational!")

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			mainLog.WithError(err).Error("HTTP server failed")
		}
	}

	mainLog.Info("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		mainLog.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// No request can enqueue any more; flush what is left
	stopMailer()
	select {
	case <-mailerDone:
	case <-shutdownCtx.Done():
		mainLog.Warn("Email queue was not drained before the shutdown deadline")
	}

	mainLog.Info("✅ Server shutdown completed")
}
