package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/quotepulse/internal/middleware"
)

// RouterOptions tunes the global middlewares of NewRouter.
type RouterOptions struct {
	RequestTimeout     time.Duration // per-request deadline; 0 means none
	RateLimitPerMinute int           // per client ip; 0 disables limiting
}

// NewRouter builds the gin engine: global middlewares, swagger UI and the
// /api/v1 quote routes. Health probes are registered by app.InitializeApp.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(opts.RateLimitPerMinute, time.Minute),
	)

	// ─── Timeout ──────────────────────────────────
	if opts.RequestTimeout > 0 {
		router.Use(func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), opts.RequestTimeout)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/quotes/:symbol", handler.GetQuote)
		v1.GET("/quotes/:symbol/min", handler.GetMin)
		v1.GET("/quotes/:symbol/max", handler.GetMax)
	}

	return router
}
