// Package constants provides shared constants used throughout the docsync codebase.
// This includes timeouts, retry defaults, header names, file permissions, and other
// configuration values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the per-request timeout for calls to the upstream document API
	DefaultHTTPTimeout = 5 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 5 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second
)

// Retry constants
const (
	// MaxRetries is the number of attempts made for a single upstream call
	MaxRetries = 3
)

// Upstream API constants
const (
	// CandidateHeader identifies the caller to the upstream API and to the docsync server
	CandidateHeader = "X-Candidate-Id"

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"

	// DataPath is the upstream path for fetching raw batches
	DataPath = "/api/data"

	// SubmitPath is the upstream path for submitting cleaned batches
	SubmitPath = "/api/submit"

	// DefaultBaseURL is used when no upstream base URL is configured
	DefaultBaseURL = "http://localhost:8000"

	// DefaultBatch is the batch requested when none is given
	DefaultBatch = "1"

	// DefaultCandidateName is the submitter identity sent with cleaned batches
	DefaultCandidateName = "docsync"

	// MaxResponseBytes caps how much of an upstream response body is read
	MaxResponseBytes = 10 << 20

	// MaxRequestBytes caps how much of an inbound API request body is read
	MaxRequestBytes = 10 << 20
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Server constants
const (
	// DefaultPort is the default HTTP API port
	DefaultPort = 8080

	// DefaultPathPrefix is the default HTTP API path prefix
	DefaultPathPrefix = "/api"

	// DefaultRateLimit is the default requests per minute per client
	DefaultRateLimit = 60

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 10

	// CacheTTL is the default time-to-live for cached raw batches
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)
