// Package api is the REST surface used by the dashboard.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/set-night/greenqash/internal/auth"
	"github.com/set-night/greenqash/internal/service"
)

// Limiter throttles claim attempts per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Deps holds everything the handlers need. Limiter may be nil.
type Deps struct {
	Users     *service.UserService
	Catalog   *service.CatalogService
	Ledger    *service.LedgerService
	Earnings  *service.EarningsService
	Claims    *service.ClaimService
	Referrals *service.ReferralService
	Verifier  *auth.Verifier
	Limiter   Limiter
	Logger    *slog.Logger
}

type handler struct {
	deps Deps
	log  *slog.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handler{deps: deps, log: deps.Logger}

	r := gin.New()
	r.Use(Recovery(h.log), RequestLogger(h.log), CollectMetrics(), CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/tasks", h.ListTasks)
		api.GET("/tasks/:task_id/claimed", h.GetClaimStatus)
		api.POST("/tasks/:task_id/claim", h.ClaimRateLimit(), h.ClaimTask)

		api.GET("/earnings", h.GetEarnings)
		api.GET("/completions", h.ListCompletions)

		api.GET("/me", h.GetMe)
		api.POST("/me/referral", h.ApplyReferral)
	}

	return r
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
