// Package main is the entry point of the HTTP API.
// It loads configuration, opens the database and redis, builds the fiber
// app and serves it until the process is signalled.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/events"
	"storeadmin/internal/gateway"
	"storeadmin/internal/logger"
	"storeadmin/internal/middleware"
	"storeadmin/internal/migrate"
	"storeadmin/internal/repositories"
	"storeadmin/internal/repositories/cache"
	"storeadmin/internal/routes"
	"storeadmin/internal/storage"
	"storeadmin/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	if err := logger.Init(!config.IsProduction()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	if cfg.AutoMigrate {
		if err := migrate.Run(ctx, db, log, migrate.DefaultOptions()); err != nil {
			return err
		}
	}

	cacheService := connectRedis(ctx, cfg.Redis, log)
	if cacheService != nil {
		defer cacheService.Close()
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	assets, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		return err
	}

	go logPoolStats(ctx, db, log)

	app := newApp(cfg, cacheService, log)
	routes.SetupRoutes(app, routes.Deps{
		Config:    cfg,
		DB:        db,
		Cache:     cacheService,
		Assets:    assets,
		Publisher: publisher,
		Gateway:   gateway.New(cfg.StripeKey),
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// connectRedis returns nil when redis is unreachable; the API then runs
// without caching and with an in-memory rate limiter.
func connectRedis(ctx context.Context, cfg config.Redis, log *zap.Logger) *cache.CacheService {
	client := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	svc := cache.NewCacheService(client, 10*time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := svc.HealthCheck(pingCtx); err != nil {
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		_ = svc.Close()
		return nil
	}
	log.Info("redis connected", zap.String("host", cfg.Host))
	return svc
}

func newApp(cfg *config.Config, cacheService *cache.CacheService, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storeadmin",
		BodyLimit:    20 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !config.IsProduction()}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	limiterCfg := limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	if cacheService != nil {
		limiterCfg.Storage = cache.NewLimiterStorage(cacheService.Client(), "ratelimit:")
	}
	app.Use("/api", limiter.New(limiterCfg))
	app.Use("/api", middleware.Timeout(cfg.RequestTimeout))

	app.Static(cfg.UploadBaseURL, cfg.UploadDir)

	log.Debug("middleware installed", zap.Int("rate_limit_max", cfg.RateLimit.Max))
	return app
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes and oversized bodies, in the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Code, fe.Message)
	}
	return response.FromError(c, err)
}

func logPoolStats(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.Debug("db pool stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
	}
}
