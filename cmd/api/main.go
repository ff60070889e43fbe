package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/lidyk-ops/SportScope/internal/infra/config"
	"github.com/lidyk-ops/SportScope/internal/infra/httpapi"
	"github.com/lidyk-ops/SportScope/internal/infra/metrics"
	miniostorage "github.com/lidyk-ops/SportScope/internal/infra/minio"
	"github.com/lidyk-ops/SportScope/internal/infra/postgres"
	"github.com/lidyk-ops/SportScope/internal/infra/rabbitmq"
	"github.com/lidyk-ops/SportScope/internal/infra/tracing"
	"github.com/lidyk-ops/SportScope/internal/usecase"
	"github.com/lidyk-ops/SportScope/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting sportscope-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint, "sportscope-api")
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// MinIO
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:    cfg.MinIOEndpoint,
		AccessKey:   cfg.MinIOAccessKey,
		SecretKey:   cfg.MinIOSecretKey,
		UseSSL:      cfg.MinIOUseSSL,
		ClipBucket:  cfg.MinIOClipBucket,
		ThumbBucket: cfg.MinIOThumbBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq")
	defer rmqConn.Close()

	topoCh, err := rmqConn.Channel()
	fatalOnErr(err, "open topology channel")
	fatalOnErr(rabbitmq.DeclareTopology(topoCh, cfg.RabbitMQExchange, cfg.RabbitMQRequestQueue, cfg.RabbitMQStatusQueue, cfg.RabbitMQDLQ), "declare topology")
	topoCh.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")
	requestPub := rabbitmq.NewRequestPublisher(pub)

	// Use case + handlers
	repo := postgres.NewAnalysisRepository(pool)
	submit := usecase.NewSubmitClipUseCase(repo, storage, requestPub, log, usecase.SubmitClipConfig{
		MaxRetries:    cfg.MaxRetries,
		HasDefaultKey: cfg.GeminiAPIKey != "",
	})
	handler := httpapi.NewHandler(submit, repo, storage, log, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(handler, log)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		log.Info("http server starting", zap.Int("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("sportscope-api stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
