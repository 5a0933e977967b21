package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-reseller-ws/config"
	"go-reseller-ws/internal/notify"
	"go-reseller-ws/internal/rabbitmq"
	"go-reseller-ws/internal/repository"
	"go-reseller-ws/internal/worker"
	"go-reseller-ws/pkg/database"
	"go-reseller-ws/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	db, err := database.ConnectDB(cfg.Database)
	if err != nil {
		appLogger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ, appLogger)
	if err != nil {
		appLogger.Error("rabbitmq connection failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ, appLogger)
	if err != nil {
		appLogger.Error("rabbitmq publisher failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// order_settled reaches WebSocket subscribers through the API's relay
	notifier := notify.Multi(publisher, notify.NewLogNotifier(appLogger))
	orders := repository.NewOrderRepo(db, repository.NewProductRepo(db))
	settlement := worker.NewOrderSettlementWorker(orders, notifier, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := settlement.Start(ctx, consumer, cfg.RabbitMQ.OrderQueue); err != nil && ctx.Err() == nil {
		appLogger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	appLogger.Info("worker exited")
}
