package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/salepoint/pos-backend/internal/config"
	kafkax "github.com/salepoint/pos-backend/internal/kafka"
	"github.com/salepoint/pos-backend/internal/profile"
	"github.com/salepoint/pos-backend/internal/redisx"
	"github.com/salepoint/pos-backend/internal/sales"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	rc := &profile.Reconciler{
		Projector:   &profile.Projector{Redis: rdb},
		Redis:       rdb,
		Logger:      logger,
		ServiceName: cfg.ServiceName + "-reconciler",
	}

	group := getenv("RECONCILER_GROUP", "profile-reconciler")
	workers := mustAtoi(os.Getenv("RECONCILER_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, sales.TopicProjectionRetry, workers, logger)

	go func() {
		logger.Info("reconciler consumer started",
			zap.String("group", group),
			zap.String("topic", sales.TopicProjectionRetry),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, rc.HandleProjectionRetry); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down reconciler...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
