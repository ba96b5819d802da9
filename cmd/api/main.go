package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/salepoint/pos-backend/internal/config"
	"github.com/salepoint/pos-backend/internal/httpx"
	kafkax "github.com/salepoint/pos-backend/internal/kafka"
	"github.com/salepoint/pos-backend/internal/postgres"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis (customer profile projection)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: created events + projection retry queue
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, sales.TopicSaleCreated, 1024, logger)
	pCreated.Start(ctx)
	pRetry := kafkax.NewProducer(cfg.KafkaBrokers, sales.TopicProjectionRetry, 1024, logger)
	pRetry.Start(ctx)

	// Domain wiring
	repo := &sales.Repo{DB: db}
	products := &sales.ProductRepo{DB: db}
	runner := &postgres.Runner{DB: db, Logger: logger}
	projector := &profile.Projector{Redis: rdb}
	svc := sales.NewService(repo, sales.Ledger{}, runner, projector,
		pCreated, pRetry, logger, cfg.ServiceName)

	router := httpx.NewRouter()
	sh := &httpx.SalesHandler{Service: svc, Logger: logger}
	sh.Register(router)
	ph := &httpx.ProductsHandler{Products: products, Logger: logger}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // close inbox -> flush & close writer
	pRetry.Close()
	cancel() // stop producer loops
	pCreated.WaitClosed()
	pRetry.WaitClosed()
}
