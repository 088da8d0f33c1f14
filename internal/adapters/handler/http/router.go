package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/kanso-readiness-engine/docs"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDependencies struct {
	ReadinessHandler *ReadinessHandler
	TrendsHandler    *TrendsHandler
	HooksHandler     *HooksHandler
	PlansHandler     *PlansHandler

	// DB and Redis are optional; nil reports "disabled" on /health.
	DB    Pinger
	Redis *redis.Client

	RequestObserver middleware.RequestObserver
	MetricsHandler  http.Handler
	RateLimit       config.RateLimitConfig
	Logger          zerolog.Logger
	StartTime       time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept-Encoding"},
		MaxAge:          12 * time.Hour,
	}))

	if deps.RequestObserver != nil {
		router.Use(middleware.RequestMetrics(deps.RequestObserver))
	}

	if deps.RateLimit.Requests > 0 && deps.RateLimit.Window > 0 {
		if deps.Redis != nil {
			router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit.Requests, deps.RateLimit.Window, deps.Logger))
		} else {
			router.Use(middleware.NewLocalRateLimiter(deps.RateLimit.Requests, deps.RateLimit.Window).Middleware())
		}
	}

	router.GET("/health", healthHandler(deps))

	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))

	apiV1 := router.Group("/api/v1")

	deps.ReadinessHandler.RegisterRoutes(apiV1)
	deps.TrendsHandler.RegisterRoutes(apiV1)
	deps.HooksHandler.RegisterRoutes(apiV1)
	deps.PlansHandler.RegisterRoutes(apiV1)

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.Ping(ctx); err != nil {
				deps.Logger.Warn().Err(err).Msg("health check: database unreachable")
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				deps.Logger.Warn().Err(err).Msg("health check: redis unreachable")
				redisStatus = "unreachable"
			}
		}

		status, statusCode := "ok", http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			status, statusCode = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
