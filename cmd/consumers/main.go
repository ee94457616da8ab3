package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/consumers"
	"eventhub/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting consumers service...")

	// Отдельный client id, чтобы не конфликтовать с API в NATS Streaming
	cfg.Messaging.NATS.ClientID = "eventhub-consumers"

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	consumerService, err := consumers.NewConsumerService(startCtx, cfg)
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	log.Info("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
