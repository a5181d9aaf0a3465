package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/config"
	"InvestmentDashboard/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner processes a parsed watchlist. *watchlist.Controller satisfies it.
type Runner interface {
	Run(ctx context.Context, symbols []string) []model.TickerResult
}

// Server manages the HTTP server and routes.
type Server struct {
	cfg      *config.Config
	runner   Runner
	engine   *gin.Engine
	server   *http.Server
	limiters *cache.Cache
}

// New creates the HTTP server. The page and the JSON API both run the
// watchlist through runner on every request.
func New(cfg *config.Config, runner Runner) *Server {
	gin.SetMode(cfg.Server.Mode)

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		limiters: cache.New(10*time.Minute, 20*time.Minute),
	}
	s.engine = s.setupRouter()
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // long watchlists fetch sequentially
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.Use(correlationID(), requestLogger(), recovery())
	if s.cfg.RateLimit.Enabled {
		r.Use(s.rateLimiter())
	}

	r.GET("/", s.dashboard)

	api := r.Group("/api")
	if len(s.cfg.CORS.AllowOrigins) > 0 {
		api.Use(corsFor(s.cfg.CORS.AllowOrigins))
	}
	{
		api.GET("/health", s.health)
		api.HEAD("/health", s.health)
		api.GET("/version", s.version)
		api.GET("/watchlist", s.watchlistAPI)
	}
	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("address", s.server.Addr).Str("url", fmt.Sprintf("http://%s", s.server.Addr)).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}
