package main

import (
	"fmt"
	"time"

	"musichub/internal/config"
	"musichub/internal/metrics"
	"musichub/internal/microservices/http-api/handler"
	"musichub/internal/microservices/http-api/middleware"
	"musichub/internal/microservices/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// routerDeps are the collaborators newRouter wires into gin.
type routerDeps struct {
	cfg      *config.Config
	verifier middleware.TokenVerifier
	limiter  middleware.RateLimiter
	health   handler.Pinger
	reviews  service.ReviewService
	likes    service.LikeService
	catalog  service.CatalogService
}

func newRouter(d routerDeps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", handler.NewHealthHandler(d.health).Healthz)
	if d.cfg.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(middleware.Timeout(d.cfg.RequestTimeout))
	api.Use(middleware.Authenticate(d.verifier))
	api.Use(middleware.RateLimit(d.limiter))
	{
		handler.NewReviewHandler(d.reviews).RegisterRoutes(api)
		handler.NewLikeHandler(d.likes).RegisterRoutes(api)
		handler.NewCatalogHandler(d.catalog).RegisterRoutes(api)
	}

	return r, nil
}
