package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/catalog"
	"storybook-server/internal/config"
	"storybook-server/internal/database"
	"storybook-server/internal/illustration"
	"storybook-server/internal/logger"
	"storybook-server/internal/messaging"
	"storybook-server/internal/repository"
	"storybook-server/internal/storage"
	"storybook-server/internal/worker"
)

func main() {
	// --- 1. Конфигурация ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	workerCfg, err := config.LoadWorker()
	if err != nil {
		fmt.Printf("Failed to load worker configuration: %v\n", err)
		os.Exit(1)
	}

	// --- 2. Логгер ---
	cfg.Logger.Service = "illustration-worker"
	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting illustration worker...",
		zap.String("env", cfg.AppEnv),
		zap.String("consumer", workerCfg.ConsumerName),
		zap.Int("prefetch", workerCfg.Prefetch),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- 3. Хранилища ---
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Password: cfg.Redis.Password})
	defer redisClient.Close()
	var guard illustration.Guard = repository.NewRedisChapterLock(redisClient, cfg.Illustration.LockTTL, log)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// блокировка глав станет локальной для процесса
		log.Warn("Redis unavailable, using in-process chapter guard", zap.Error(err))
		guard = illustration.NewLocalGuard()
	}

	media, err := storage.NewLocalStorage(cfg.Media.SavePath, cfg.Media.PublicBaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}
	storyRepo := repository.NewStoryRepository(pool, log)
	catalogSvc := catalog.NewService(repository.NewCatalogRepository(pool, log), cfg.CatalogCacheTTL, log)

	// --- 4. RabbitMQ ---
	conn, err := messaging.Dial(ctx, cfg.RabbitMQ.URL, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	eventPublisher, err := messaging.NewRabbitMQPublisher(conn, cfg.RabbitMQ.EventQueue, log)
	if err != nil {
		log.Fatal("Failed to create event publisher", zap.Error(err))
	}
	defer eventPublisher.Close()
	notifier := messaging.NewEventNotifier(eventPublisher)

	// --- 5. Обработчик задач ---
	orchestrator := illustration.NewOrchestrator(
		ai.NewMediaClient(cfg, log),
		storyRepo,
		catalogSvc,
		media,
		illustration.NewBackupPool(cfg.Backup.ByAgeGroup(), cfg.Backup.Default),
		guard,
		illustration.Options{
			Style:       cfg.Image.Style,
			Mood:        cfg.Image.Mood,
			Concurrency: cfg.Illustration.Concurrency,
			Interval:    cfg.Illustration.Interval,
		},
		log,
	).WithNotifier(notifier)
	taskHandler := worker.NewHandler(storyRepo, orchestrator, notifier, log)

	// --- 6. Метрики ---
	metricsSrv := &http.Server{Addr: ":" + workerCfg.MetricsPort, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Starting metrics server", zap.String("port", workerCfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- 7. Consumer ---
	consumer := messaging.NewConsumer(conn, cfg.RabbitMQ.TaskQueue, workerCfg.ConsumerName, workerCfg.Prefetch, log)
	log.Info("Illustration worker started successfully")
	if err := consumer.Run(ctx, taskHandler); err != nil && ctx.Err() == nil {
		log.Error("Task consumer stopped with error", zap.Error(err))
	}

	// --- 8. Graceful Shutdown ---
	log.Info("Shutting down illustration worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server forced to shutdown", zap.Error(err))
	}
	log.Info("Illustration worker shut down gracefully")
}
