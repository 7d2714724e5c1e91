package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musichub/database"
	"musichub/internal/config"
	"musichub/internal/logging"
	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/repository"
	"musichub/internal/microservices/http-api/service"
	"musichub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("could not load config")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid config")
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Caller: cfg.IsDevelopment(),
	})
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		logging.Fatal().Err(err).Msg("database migration failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to get database instance")
	}

	limiter, closeLimiter, err := newRateLimiter(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("rate limiter setup failed")
	}
	defer closeLimiter()

	// Repositories
	reviewRepo := repository.NewReviewRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	aggregates := service.NewAggregateService(reviewRepo, likeRepo, albumRepo)

	router, err := newRouter(routerDeps{
		cfg:      cfg,
		verifier: auth.NewTokenVerifier(cfg.JWTSecret),
		limiter:  limiter,
		health:   sqlDB,
		reviews:  service.NewReviewService(reviewRepo, albumRepo, userRepo, aggregates),
		likes:    service.NewLikeService(likeRepo, userRepo),
		catalog:  service.NewCatalogService(artistRepo, albumRepo, aggregates),
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("router setup failed")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("env", cfg.GoEnv).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("server stopped")
}

// newRateLimiter prefers Redis so limits hold across instances, and falls back
// to an in-process limiter when REDIS_URL is unset or unreachable.
func newRateLimiter(ctx context.Context, cfg *config.Config) (middleware.RateLimiter, func(), error) {
	local, err := middleware.NewLocalRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitMaxKeys)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisURL == "" {
		logging.Info().Msg("REDIS_URL not set, using in-process rate limiter")
		return local, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logging.Warn().Err(err).Msg("invalid REDIS_URL, using in-process rate limiter")
		return local, func() {}, nil
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Msg("redis unreachable, using in-process rate limiter")
		client.Close()
		return local, func() {}, nil
	}

	logging.Info().Str("addr", opts.Addr).Msg("using redis rate limiter")
	return middleware.NewRedisRateLimiter(client, cfg.RateLimitPerMinute), func() { client.Close() }, nil
}
