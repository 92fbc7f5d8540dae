package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/controller"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/router"
	"github.com/minhvo/tiemao-backend/internal/scheduler"
	"github.com/minhvo/tiemao-backend/internal/session"
	"github.com/minhvo/tiemao-backend/internal/storage"
	"github.com/minhvo/tiemao-backend/internal/validation"
	"github.com/minhvo/tiemao-backend/pkg/images"
	"github.com/minhvo/tiemao-backend/pkg/logger"
	"github.com/minhvo/tiemao-backend/pkg/mailer"
	"github.com/minhvo/tiemao-backend/pkg/payment/stripe"
	"github.com/minhvo/tiemao-backend/pkg/rabbitmq"
	"github.com/minhvo/tiemao-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Tiệm Áo Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed the admin account and starter catalog
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Optional infrastructure. The shop works without Redis, RabbitMQ and
	// SMTP; they are picked up when configured.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	var broker *rabbitmq.Client
	if cfg.AMQP.URL != "" {
		broker, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.AMQP.URL})
		if err != nil {
			logger.Warn("RabbitMQ unavailable, order events disabled", map[string]interface{}{
				"error": err.Error(),
			})
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	var stripeClient *stripe.Client
	if cfg.Payment.Stripe.SecretKey != "" {
		stripeClient, err = stripe.NewClient(stripe.Config{
			SecretKey:      cfg.Payment.Stripe.SecretKey,
			PublishableKey: cfg.Payment.Stripe.PublishableKey,
			BaseURL:        cfg.Payment.Stripe.BaseURL,
			SuccessURL:     cfg.Payment.Stripe.SuccessURL,
			CancelURL:      cfg.Payment.Stripe.CancelURL,
		})
		if err != nil {
			logger.Warn("Stripe misconfigured, card payments disabled", map[string]interface{}{
				"error": err.Error(),
			})
			stripeClient = nil
		}
	}

	// Register the Vietnamese phone and password validators with gin
	if err := validation.Register(); err != nil {
		logger.Fatal("Failed to register validators", err)
	}

	// Image resolution against the public assets directory
	resolver := images.NewResolver(cfg.Assets.PublicDir, images.DefaultPlaceholders)
	heroImage := images.FindHero(cfg.Assets.PublicDir)

	uploadStorage, err := storage.NewLocalStorage(cfg.Assets.UploadDir)
	if err != nil {
		logger.Fatal("Failed to prepare upload directory", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	addressRepo := repository.NewAddressRepository(db.GetDB())

	sessionStore := session.NewStore(db.GetDB())
	mail := mailer.New(cfg.SMTP)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	productService := service.NewProductService(productRepo, resolver)
	cartService := service.NewCartService(productRepo, cartRepo, resolver)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, userRepo, mail, broker)
	addressService := service.NewAddressService(addressRepo)
	reportService := service.NewReportService(orderRepo, resolver)

	// Initialize controllers
	shopController := controller.NewShopController(productService, productRepo, userRepo, heroImage)
	authController := controller.NewAuthController(authService, cartService)
	accountController := controller.NewAccountController(authService, addressService, uploadStorage)
	cartController := controller.NewCartController(cartService, orderService)
	orderController := controller.NewOrderController(orderService, cartService, addressService)
	paymentController := controller.NewPaymentController(stripeClient, cartService, orderService)
	adminController := controller.NewAdminController(productService, orderService, reportService, uploadStorage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Setup router
	r := router.NewRouter(
		shopController,
		authController,
		accountController,
		cartController,
		orderController,
		paymentController,
		adminController,
		authMiddleware,
		sessionStore,
		cfg,
	)
	engine := r.Setup()

	// Nightly cleanup of expired sessions and abandoned carts
	cleanup := scheduler.NewCleanupScheduler(sessionStore, cartRepo)
	if err := cleanup.Start(); err != nil {
		logger.Warn("Cleanup scheduler not started", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
