package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	correlationHeader = "X-Correlation-ID"
	correlationKey    = "correlation_id"
)

// correlationID reuses an incoming request id or generates one.
func correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = c.GetHeader(correlationHeader)
		}
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(correlationKey, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = log.Error()
		case status >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}
		evt.Str("correlation_id", c.GetString(correlationKey)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP Request")
	}
}

func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Str("correlation_id", c.GetString(correlationKey)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("PANIC_RECOVERED")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// rateLimiter keeps one token bucket per client IP. Idle buckets expire
// from the cache.
func (s *Server) rateLimiter() gin.HandlerFunc {
	limit := rate.Limit(s.cfg.RateLimit.RPS)
	burst := s.cfg.RateLimit.Burst
	return func(c *gin.Context) {
		ip := c.ClientIP()

		limiter := rate.NewLimiter(limit, burst)
		if err := s.limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
			// Another request already created this client's bucket.
			if v, found := s.limiters.Get(ip); found {
				limiter = v.(*rate.Limiter)
			}
		}

		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func corsFor(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", correlationHeader},
		ExposeHeaders: []string{"Content-Length", correlationHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
