package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suteetoe/marketplace/internal/middleware"
	"github.com/suteetoe/marketplace/internal/router"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/config"
	"github.com/suteetoe/marketplace/pkg/database"
	"github.com/suteetoe/marketplace/pkg/jwtutil"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/pkg/storage"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("marketplace")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting marketplace service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	objects, err := storage.New(&cfg.Upload)
	if err != nil {
		log.Fatal("Failed to initialize upload storage", zap.Error(err))
	}
	log.Info("Upload storage initialized", zap.String("driver", cfg.Upload.Driver))

	var limiter *middleware.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		limiter, err = middleware.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Fatal("Failed to initialize rate limiter", zap.Error(err))
		}
		log.Info("Rate limiting enabled", zap.String("redis_addr", cfg.Redis.Addr), zap.Int("limit", cfg.RateLimit.Limit))
	} else {
		log.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	e := router.New(router.Deps{
		Store:         store.New(db),
		JWT:           jwtutil.NewJWTUtil(&cfg.JWT),
		Objects:       objects,
		Limiter:       limiter,
		MaxUploadSize: cfg.Upload.MaxSize,
	})

	// Start server
	port := cfg.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
