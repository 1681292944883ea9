package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/set-night/greenqash/internal/auth"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/metrics"
)

const userKey = "user"

// AuthMiddleware verifies the bearer token and loads (or creates) the user.
func (h *handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		userID, _, err := h.deps.Verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		user, created, err := h.deps.Users.EnsureUser(c.Request.Context(), userID)
		if err != nil {
			h.log.Error("failed to load user", "error", err, "user_id", userID)
			c.AbortWithStatusJSON(statusFor(err), gin.H{"detail": "could not load user"})
			return
		}
		if created {
			h.log.Info("new dashboard user", "user_id", user.ID)
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(userKey).(*domain.User)
}

// ClaimRateLimit caps claim attempts per user. Limiter errors let the
// request through; the ledger still prevents double payment.
func (h *handler) ClaimRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.deps.Limiter == nil {
			c.Next()
			return
		}

		user := currentUser(c)
		ok, err := h.deps.Limiter.Allow(c.Request.Context(), "claim:"+user.ID.String())
		if err != nil {
			h.log.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "too many claim attempts, slow down"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request", attrs...)
			return
		}
		log.Debug("request", attrs...)
	}
}

// CollectMetrics records request durations. The route template is used as
// the path label to keep cardinality bounded.
func CollectMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", "panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			}
		}()
		c.Next()
	}
}
