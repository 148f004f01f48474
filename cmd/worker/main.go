package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ozgun/catalogd/internal/config"
	"github.com/ozgun/catalogd/internal/logger"
	"github.com/ozgun/catalogd/internal/notify"
	"github.com/ozgun/catalogd/internal/queue"
	"github.com/ozgun/catalogd/internal/repository"
)

// Standalone notification worker. Run it next to the API when delivery
// volume outgrows the API's in-process worker; claims are guarded so both
// can run at once without double delivery.
func main() {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}

	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	var deliverer queue.Deliverer
	switch cfg.Notify.Transport {
	case "webhook":
		deliverer = notify.NewWebhookDeliverer(cfg.Notify.Webhook, userRepo, appLogger)
	default:
		deliverer = notify.NewSMTPDeliverer(cfg.Notify.SMTP, userRepo, appLogger)
	}

	worker := queue.NewWorker(jobRepo, deliverer, appLogger, queue.Options{
		MaxAttempts:  cfg.Queue.MaxAttempts,
		Backoff:      cfg.Queue.Backoff,
		PollInterval: cfg.Queue.PollInterval,
		ClaimTimeout: cfg.Queue.ClaimTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down worker...")
		cancel()
	}()

	appLogger.Info("Notification worker started")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		appLogger.Fatalf("Worker stopped: %v", err)
	}

	appLogger.Info("Worker exited")
}
