package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/d1childress/neoTUI/config"
	"github.com/d1childress/neoTUI/logging"

	_ "github.com/d1childress/neoTUI/docs"
)

// Run initializes dependencies and serves the REST API until the process
// exits. Requires a reachable Redis for the task store and rate limiter.
func Run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Configure()

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
	}

	store := NewRedisStore(redisClient)

	defaults := TaskDefaults{Timeout: cfg.ScanTimeout, Workers: cfg.ScanWorkers}
	StartWorkers(ctx, store, defaults, cfg.APIWorkers)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware(logger))
	router.Use(SecurityHeadersMiddleware())

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(redisClient, cfg.RateLimit, time.Minute, logger))
	if cfg.APIKey != "" {
		v1.Use(AuthMiddleware(cfg.APIKey, logger))
	} else {
		logger.Warn("NEOTUI_API_KEY unset, API authentication disabled")
	}

	server := NewServer(store)
	server.RegisterRoutes(v1)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logger.Info("starting neoTUI API server", "addr", cfg.APIAddr)
	return router.Run(cfg.APIAddr)
}
