package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"weave-server/internal/auth"
	"weave-server/internal/clients/weave"
	"weave-server/internal/config"
	"weave-server/internal/handler"
	appLogger "weave-server/internal/logger"
	"weave-server/internal/middleware"
	"weave-server/internal/repository"
	"weave-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := appLogger.New(appLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Configuration loaded", zap.String("env", cfg.Env))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runMigrations(cfg.GetDSN()); err != nil {
		zap.L().Fatal("Failed to run migrations", zap.Error(err))
	}
	zap.L().Info("Migrations applied")

	pgPool, err := setupPostgres(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	redisClient, err := setupRedis(ctx, cfg)
	if err != nil {
		// Reference data degrades to local tables without redis; keep going.
		zap.L().Warn("Redis unavailable, reference data cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		zap.L().Info("Connected to Redis")
	}

	// --- Dependency Injection ---
	weaveClient := weave.NewClient(cfg.WeaveAPIURL, cfg.WeaveTimeout, logger)

	userRepo := repository.NewPgUserRepository(pgPool, logger)
	storyRepo := repository.NewPgStoryRepository(pgPool, logger)
	chapterRepo := repository.NewPgChapterRepository(pgPool, logger)

	authService := auth.NewService(userRepo, weaveClient, logger, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.StartingCredits)
	storyService := service.NewStoryService(storyRepo, chapterRepo, weaveClient, logger)
	continuationService := service.NewContinuationService(storyRepo, chapterRepo, weaveClient, logger, cfg.StrictChoices)
	referenceService := service.NewReferenceService(weaveClient, redisClient, cfg.ReferenceCacheTTL, logger)

	storyHandler := handler.NewStoryHandler(storyService, continuationService, referenceService, authService, logger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetAllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	storyHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}
	zap.L().Info("Server exited")
}

func setupPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MaxConnIdleTime = cfg.DBIdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func setupRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func runMigrations(dsn string) error {
	migrateDSN := "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	m, err := migrate.New("file://migrations", migrateDSN)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
