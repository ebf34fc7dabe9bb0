package server

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/handlers"
	"github.com/agentstation/docsync/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.app, s.cache, s.logger, s.startTime)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes. Each path is also served with
// a trailing slash.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for path, fn := range map[string]http.HandlerFunc{
		"/health":                h.HandleHealth,
		prefix + "/health":       h.HandleHealth,
		prefix + "/fetch-raw":    h.HandleFetchRaw,
		prefix + "/fetch-clean":  h.HandleFetchClean,
		prefix + "/submit-clean": h.HandleSubmitClean,
	} {
		mux.HandleFunc(path, fn)
		mux.HandleFunc(path+"/", fn)
	}
}

// applyMiddleware wraps handler with middleware chain. The first
// middleware listed is the outermost.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(s.logger),
		middleware.Logger(s.logger),
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	if s.limiter != nil {
		chain = append(chain, middleware.RateLimit(s.limiter))
	}

	candidate := middleware.DefaultCandidateConfig()
	candidate.Enabled = cfg.CandidateID != ""
	candidate.CandidateID = cfg.CandidateID
	candidate.HeaderName = cfg.CandidateHeader
	candidate.PublicPaths = []string{"/health", "/health/", cfg.PathPrefix + "/health", cfg.PathPrefix + "/health/"}
	chain = append(chain, middleware.Candidate(candidate, s.logger))

	return middleware.Chain(chain...)(handler)
}
