package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/constants"
)

// CandidateHeader identifies the calling candidate.
const CandidateHeader = constants.CandidateHeader

// CandidateConfig holds candidate header validation settings.
type CandidateConfig struct {
	// Enabled turns the check on.
	Enabled bool
	// CandidateID is the only accepted header value.
	CandidateID string
	// HeaderName defaults to X-Candidate-Id.
	HeaderName string
	// PublicPaths skip the check.
	PublicPaths []string
}

// DefaultCandidateConfig returns a disabled check with health paths public.
func DefaultCandidateConfig() CandidateConfig {
	return CandidateConfig{
		Enabled:     false,
		HeaderName:  CandidateHeader,
		PublicPaths: []string{"/health", "/api/health"},
	}
}

// Candidate rejects requests whose candidate header is missing or differs
// from the configured id with 403 and error code 1002.
func Candidate(config CandidateConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	header := config.HeaderName
	if header == "" {
		header = CandidateHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || isPublicPath(r.URL.Path, config.PublicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(header)
			switch {
			case got == "":
				logger.Error().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Missing " + header + " header")
				response.Forbidden(w)
				return
			case got != config.CandidateID:
				logger.Error().
					Str("path", r.URL.Path).
					Str("received_candidate_id", got).
					Msg("Invalid candidate ID received")
				response.Forbidden(w)
				return
			}

			logger.Debug().
				Str("candidate_id", got).
				Msg("Candidate ID validated successfully")
			next.ServeHTTP(w, r)
		})
	}
}

// isPublicPath checks if a path is in the public paths list.
func isPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
