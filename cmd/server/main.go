package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimaspr/belimart-backend/config"
	"github.com/dimaspr/belimart-backend/internal/app/controller"
	"github.com/dimaspr/belimart-backend/internal/app/repository"
	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/db"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/dimaspr/belimart-backend/internal/router"
	"github.com/dimaspr/belimart-backend/internal/scheduler"
	"github.com/dimaspr/belimart-backend/internal/storage"
	"github.com/dimaspr/belimart-backend/pkg/logger"
	"github.com/dimaspr/belimart-backend/pkg/redis"
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

	logger.Info("Starting BELIMART Backend Server", map[string]interface{}{
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

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist; the server still runs without it
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	transactionRepo := repository.NewTransactionRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		cfg.Admin.Email,
	)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, db.GetDB())
	checkoutService := service.NewCheckoutService(transactionRepo, cartRepo, db.GetDB())
	exportService := service.NewExportService(productRepo, transactionRepo, userRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	transactionController := controller.NewTransactionController(checkoutService)
	uploadController := controller.NewUploadController(s3Storage)
	exportController := controller.NewExportController(exportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		productController,
		cartController,
		transactionController,
		uploadController,
		exportController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Nightly repair of denormalized cart totals
	cartReconciler := scheduler.NewCartReconciler(cartService)
	if err := cartReconciler.Start(); err != nil {
		logger.Error("Failed to start cart reconciler", err)
	}
	defer cartReconciler.Stop()

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
