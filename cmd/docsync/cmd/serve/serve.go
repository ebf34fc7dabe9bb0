package serve

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/internal/server"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// serveWithGracefulShutdown serves on ln until ctx is cancelled, then
// drains connections and releases server resources.
func serveWithGracefulShutdown(ctx context.Context, httpServer *http.Server, ln net.Listener, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().
			Str("addr", ln.Addr().String()).
			Str("service", "API").
			Msg("HTTP server listening")

		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return errors.WrapIO("serve", ln.Addr().String(), err)
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")

		// ctx is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.WrapResource("shutdown", "server", "", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Server resources shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}
