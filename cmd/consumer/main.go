// Command consumer records resource change events from RabbitMQ in
// logs/changes.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/resource-router/internal/config"
	"github.com/iliyamo/resource-router/internal/logger"
	"github.com/iliyamo/resource-router/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("invalid configuration", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	out, err := queue.NewChangeLog("logs/changes.log")
	if err != nil {
		log.Fatal("open change log", zap.Error(err))
	}
	defer func() { _ = out.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("consuming change events", zap.String("queue", queue.ChangesQueue))
	if err := queue.StartChangeConsumer(ctx, cfg.AMQPURL, out, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("change consumer stopped", zap.Error(err))
	}
}
