// Package serve provides the serve command, which exposes the pipeline
// stages as an HTTP API.
package serve

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/server"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the HTTP API server",
		Long: `Start the docsync HTTP API.

Endpoints (under --prefix, default /api):
  GET  /fetch-raw      fetch a raw batch (?batch=N, ?refresh=true)
  POST /fetch-clean    normalize and deduplicate posted records
  POST /submit-clean   validate and submit cleaned items
  GET  /health         liveness and cache statistics

Requests must carry the configured X-Candidate-Id header unless no
candidate id is configured. Responses use the envelope
{"hasError", "errorCode", "message", "data"}.`,
		Example: `  # Start on default port 8080
  docsync serve

  # Custom port, CORS for one origin, rate limiting
  docsync serve --port 3000 --cors-origins "https://app.example.com" --rate-limit 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app)
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Bool("candidate-check", true, "Require the configured candidate id on requests")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per client (0 to disable)")
	cmd.Flags().Int("rate-burst", defaults.RateBurst, "Rate limit burst size")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "Raw batch cache TTL")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// runServer starts the API server and blocks until the command context
// is cancelled.
func runServer(cmd *cobra.Command, app application.Application) error {
	cfg, err := parseConfig(cmd, app)
	if err != nil {
		return err
	}
	logger := app.Logger()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("candidate_check", cfg.CandidateID != "").
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	srv, err := server.New(app, cfg)
	if err != nil {
		return errors.WrapResource("create", "server", "", err)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return errors.WrapIO("listen", httpServer.Addr, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "API server listening on http://%s%s\n", ln.Addr(), cfg.PathPrefix)
	return serveWithGracefulShutdown(cmd.Context(), httpServer, ln, srv, logger)
}

// parseConfig parses command flags into server configuration.
// HTTP_HOST and HTTP_PORT override the flags.
func parseConfig(cmd *cobra.Command, app application.Application) (server.Config, error) {
	flags := cmd.Flags()
	cfg := server.DefaultConfig()

	cfg.Port, _ = flags.GetInt("port")
	cfg.Host, _ = flags.GetString("host")
	cfg.PathPrefix, _ = flags.GetString("prefix")
	cfg.CORSEnabled, _ = flags.GetBool("cors")
	cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	cfg.RateLimit, _ = flags.GetInt("rate-limit")
	cfg.RateBurst, _ = flags.GetInt("rate-burst")
	cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	if check, _ := flags.GetBool("candidate-check"); check {
		cfg.CandidateID = app.CandidateID()
	}

	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		p, err := parsePort(envPort)
		if err != nil {
			return cfg, err
		}
		cfg.Port = p
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		cfg.Host = envHost
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, errors.NewValidationError("port", cfg.Port, "port out of range")
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.CacheTTL
	}

	return cfg, nil
}

// parsePort parses a port string to an integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, errors.WrapValidation("port", err)
	}
	if port < 1 || port > 65535 {
		return 0, errors.NewValidationError("port", port, "port out of range")
	}
	return port, nil
}
