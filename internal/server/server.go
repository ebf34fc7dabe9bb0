// Package server provides the HTTP server for the docsync API.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/server/cache"
	"github.com/agentstation/docsync/internal/server/middleware"
	"github.com/agentstation/docsync/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app       application.Application
	cache     *cache.Cache
	limiter   *middleware.RateLimiter
	logger    *zerolog.Logger
	config    Config
	startTime utc.Time
}

// New creates a new server instance with the given configuration.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.CacheTTL
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = constants.DefaultPathPrefix
	}
	cfg.PathPrefix = strings.TrimRight("/"+strings.Trim(cfg.PathPrefix, "/"), "/")
	if cfg.CandidateHeader == "" {
		cfg.CandidateHeader = constants.CandidateHeader
	}

	if _, err := app.Client(); err != nil {
		return nil, err
	}

	s := &Server{
		app:       app,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:    logger,
		config:    cfg,
		startTime: utc.Now(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger)
	}
	if cfg.CandidateID == "" {
		logger.Warn().Msg("No candidate id configured; candidate header check disabled")
	}

	logger.Debug().
		Str("prefix", cfg.PathPrefix).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Server instance created")
	return s, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown releases background resources. The caller shuts down the
// http.Server itself.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.cache.Clear()
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Config returns the effective server configuration.
func (s *Server) Config() Config {
	return s.config
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() utc.Time {
	return s.startTime
}
