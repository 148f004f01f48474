package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ozgun/catalogd/internal/api"
	"github.com/ozgun/catalogd/internal/archive"
	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/logger"
	"github.com/ozgun/catalogd/internal/notify"
	"github.com/ozgun/catalogd/internal/queue"
	"github.com/ozgun/catalogd/internal/repository"
	"github.com/ozgun/catalogd/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional raw-feed archival to object storage
	var archiver service.Archiver
	if cfg.Archive.Enabled {
		s3Archiver, err := archive.New(cfg.Archive)
		if err != nil {
			appLogger.Fatalf("Failed to initialize feed archive: %v", err)
		}
		if err := s3Archiver.EnsureBucket(ctx); err != nil {
			appLogger.Fatalf("Failed to ensure archive bucket: %v", err)
		}
		archiver = s3Archiver
	}

	// Pick the notification transport
	var deliverer queue.Deliverer
	switch cfg.Notify.Transport {
	case "webhook":
		deliverer = notify.NewWebhookDeliverer(cfg.Notify.Webhook, userRepo, appLogger)
	default:
		deliverer = notify.NewSMTPDeliverer(cfg.Notify.SMTP, userRepo, appLogger)
	}

	// Initialize notification queue and its in-process worker
	notifyQueue := queue.New(jobRepo, appLogger)
	worker := queue.NewWorker(jobRepo, deliverer, appLogger, queue.Options{
		MaxAttempts:  cfg.Queue.MaxAttempts,
		Backoff:      cfg.Queue.Backoff,
		PollInterval: cfg.Queue.PollInterval,
		ClaimTimeout: cfg.Queue.ClaimTimeout,
	})
	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			appLogger.Errorf("Notification worker stopped: %v", err)
		}
	}()

	// Initialize services
	ingestService := service.NewIngestService(productRepo, notifyQueue, archiver, appLogger)
	catalogService := service.NewCatalogService(productRepo, cfg.Listing)

	// Setup router
	router := api.SetupRouter(ingestService, catalogService, jobRepo, appLogger, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.Infof("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop the worker, then drain in-flight requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exited")
}
