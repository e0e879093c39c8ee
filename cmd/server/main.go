package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yukikurage/task-rest-api/internal/config"
	"github.com/yukikurage/task-rest-api/internal/database"
	"github.com/yukikurage/task-rest-api/internal/handlers"
	"github.com/yukikurage/task-rest-api/internal/logger"
	"github.com/yukikurage/task-rest-api/internal/middleware"
	"github.com/yukikurage/task-rest-api/internal/repository"
	"github.com/yukikurage/task-rest-api/internal/security"
	"github.com/yukikurage/task-rest-api/internal/services"
	"github.com/yukikurage/task-rest-api/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg)
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	secret := cfg.SecretKey
	if secret == "" {
		secret, err = utils.GenerateSecret(32)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate signing key")
		}
		log.Warn().Msg("SECRET_KEY not set; using a random key, tokens will not survive a restart")
	}

	tokens, err := security.NewTokenService([]byte(secret), cfg.Algorithm, cfg.AccessTokenTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise token service")
	}

	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		security.NewPasswordHasher(cfg.BcryptCost),
		tokens,
	)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:       cfg,
		Log:          log,
		DB:           db,
		AuthService:  authService,
		TaskService:  taskService,
		LoginLimiter: loginLimiter(cfg, redisClient, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// loginLimiter prefers a shared Redis counter and falls back to a local one
// when Redis is not configured or does not answer.
func loginLimiter(cfg *config.Config, client *redis.Client, log zerolog.Logger) middleware.RateLimiter {
	if cfg.LoginRateLimit <= 0 {
		return nil
	}

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		err := client.Ping(ctx).Err()
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("login rate limiter using redis")
			return middleware.NewRedisRateLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow)
		}
		log.Warn().Err(err).Msg("redis unavailable; login rate limiter is process local")
	}

	return middleware.NewMemoryRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
}
