// Package main Storybook API
//
//	@title			Storybook API
//	@version		1.0
//	@description	Сборка детских историй, иллюстрации, озвучка и прогресс чтения.
//	@BasePath		/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/assembly"
	"storybook-server/internal/auth"
	"storybook-server/internal/catalog"
	"storybook-server/internal/config"
	"storybook-server/internal/database"
	"storybook-server/internal/handler"
	"storybook-server/internal/illustration"
	"storybook-server/internal/logger"
	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/narration"
	"storybook-server/internal/reading"
	"storybook-server/internal/repository"
	"storybook-server/internal/storage"
	"storybook-server/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	cfg.Logger.Service = "storybook-api"
	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	log.Info("Starting storybook API server", zap.String("env", cfg.AppEnv), zap.String("db", cfg.Database.MaskedDSN()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Хранилища ---
	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()
	if cfg.Database.AutoMigrate {
		if err := database.ApplyMigrations(pool, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := setupRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	media, err := storage.NewLocalStorage(cfg.Media.SavePath, cfg.Media.PublicBaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	storyRepo := repository.NewStoryRepository(pool, log)
	readingRepo := repository.NewReadingSessionRepository(pool, log)
	catalogRepo := repository.NewCatalogRepository(pool, log)

	// --- Провайдеры и сервисы ---
	mediaClient := ai.NewMediaClient(cfg, log)
	storyGenerator, err := ai.NewStoryGenerator(cfg, mediaClient, log)
	if err != nil {
		log.Fatal("Failed to initialize story generator", zap.Error(err))
	}

	catalogSvc := catalog.NewService(catalogRepo, cfg.CatalogCacheTTL, log)
	assembler := assembly.NewService(storyGenerator, catalogSvc, storyRepo, log)
	narrator := narration.NewService(mediaClient, media, storyRepo, log)
	tracker := reading.NewTracker(readingRepo, storyRepo, log)

	hub := websocket.NewHub(cfg.CORSAllowedOrigins, log)
	orchestrator := illustration.NewOrchestrator(
		mediaClient,
		storyRepo,
		catalogSvc,
		media,
		illustration.NewBackupPool(cfg.Backup.ByAgeGroup(), cfg.Backup.Default),
		repository.NewRedisChapterLock(redisClient, cfg.Illustration.LockTTL, log),
		illustration.Options{
			Style:       cfg.Image.Style,
			Mood:        cfg.Image.Mood,
			Concurrency: cfg.Illustration.Concurrency,
			Interval:    cfg.Illustration.Interval,
		},
		log,
	).WithNotifier(websocket.NewHubNotifier(hub))

	verifier, err := auth.NewVerifier(cfg.JWTSecret, repository.NewRedisRevocationStore(redisClient, log), log)
	if err != nil {
		log.Fatal("Failed to initialize JWT verifier", zap.Error(err))
	}

	// --- RabbitMQ ---
	var wg sync.WaitGroup
	deps := handler.Dependencies{
		Catalog:     catalogSvc,
		Assembler:   assembler,
		Stories:     storyRepo,
		Illustrator: orchestrator,
		Narrator:    narrator,
		Reading:     tracker,
		Verifier:    verifier,
		Invalidator: verifier,
		Notifier:    hub,
		WebSocket:   hub.ServeWS,
	}

	mqConn, err := messaging.Dial(ctx, cfg.RabbitMQ.URL, log)
	if err != nil {
		// без брокера API работает, но иллюстрации только синхронно
		log.Error("RabbitMQ unavailable, async illustrations disabled", zap.Error(err))
	} else {
		defer mqConn.Close()
		taskPublisher, err := messaging.NewRabbitMQPublisher(mqConn, cfg.RabbitMQ.TaskQueue, log)
		if err != nil {
			log.Fatal("Failed to create task publisher", zap.Error(err))
		}
		defer taskPublisher.Close()
		deps.Tasks = taskPublisher

		wg.Add(1)
		go func() {
			defer wg.Done()
			runEventRelay(ctx, mqConn, cfg.RabbitMQ.EventQueue, hub, log)
		}()
	}

	// --- HTTP ---
	if cfg.AppEnv == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.ZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	router.Static("/media", media.Root())
	handler.NewStoryHandler(deps, log).RegisterRoutes(router)

	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// генерация истории и пакет иллюстраций идут синхронно
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	wg.Wait()
	log.Info("Server exiting")
}

// runEventRelay пересылает события воркера в websocket до отмены ctx.
func runEventRelay(ctx context.Context, conn *amqp091.Connection, queue string, hub *websocket.Hub, log *zap.Logger) {
	consumer := messaging.NewConsumer(conn, queue, "storybook_api_events", 10, log)
	if err := consumer.Run(ctx, websocket.NewEventRelay(hub, log)); err != nil && ctx.Err() == nil {
		log.Error("Illustration event consumer stopped", zap.Error(err))
		return
	}
	log.Info("Illustration event consumer stopped")
}

func setupRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	log.Info("Connected to Redis", zap.String("address", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}
