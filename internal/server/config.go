package server

import (
	"time"

	"github.com/agentstation/docsync/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// Candidate check; an empty CandidateID disables it
	CandidateID     string
	CandidateHeader string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Performance settings
	RateLimit int // Requests per minute per client (0 to disable)
	RateBurst int
	CacheTTL  time.Duration

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            constants.DefaultPort,
		PathPrefix:      constants.DefaultPathPrefix,
		CandidateHeader: constants.CandidateHeader,
		CORSEnabled:     false,
		CORSOrigins:     []string{},
		RateLimit:       constants.DefaultRateLimit,
		RateBurst:       constants.BurstSize,
		CacheTTL:        constants.CacheTTL,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
	}
}
