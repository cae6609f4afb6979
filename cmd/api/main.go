package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ruleta-backend/internal/config"
	"ruleta-backend/internal/handlers"
	"ruleta-backend/internal/logger"
	"ruleta-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to set up session store", zap.Error(err))
	}
	defer store.Close()

	gameEngine, err := services.NewGameEngine(store, cfg.RangeMax, zlog)
	if err != nil {
		zlog.Fatal("failed to create game engine", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				gameEngine.CleanupStaleSessions(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(ctx, handlers.RouterDeps{
		GameEngine:     gameEngine,
		Store:          store,
		JWTService:     services.NewJWTService(cfg),
		RateLimitSpins: cfg.RateLimitSpins,
		Log:            zlog,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.Int("range_max", cfg.RangeMax))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (services.SessionStore, error) {
	if cfg.RedisURL == "" {
		zlog.Info("REDIS_URL not set, keeping sessions in memory")
		return services.NewMemoryStore(cfg.SessionTTL), nil
	}
	return services.NewRedisService(ctx, cfg)
}
