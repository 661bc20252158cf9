package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/documents"
	"pmsdoc-backend/internal/services/health"
	"pmsdoc-backend/internal/shared/config"
	"pmsdoc-backend/internal/shared/metrics"
	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/server/respond"
	"pmsdoc-backend/internal/tickets"
	"pmsdoc-backend/internal/tracker"
)

// RouterDeps lists the handlers mounted under /api/v1.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	DocumentHandler *documents.Handler
	TicketHandler   *tickets.Handler
	TrackerHandler  *tracker.Handler
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			middleware.ModelRateLimitGroup: {Rate: cfg.RateLimitModelRPS, Burst: cfg.RateLimitModelBurst},
		},
		GroupFor: middleware.ModelRoutes,
		Limiter:  deps.Limiter,
	}))

	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}

	protected := api.Group("", middleware.ClientKey(cfg.ClientKey))
	if deps.TicketHandler != nil {
		deps.TicketHandler.RegisterRoutes(protected)
	}
	if deps.TrackerHandler != nil {
		deps.TrackerHandler.RegisterRoutes(protected)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
