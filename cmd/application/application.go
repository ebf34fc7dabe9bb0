// Package application provides the application interface for docsync commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            batch, err := client.Fetch(cmd.Context(), app.DefaultBatch())
//	            // ...
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func(...docsync.Option) (docsync.Client, error) {
//	        return docsync.New(docsync.WithBaseURL(upstream.URL))
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync"
)

// Application provides the application interface that commands need.
// The App struct from cmd/docsync/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the docsync client. Without options the default
	// cached instance is returned; options build a fresh instance.
	Client(opts ...docsync.Option) (docsync.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// DefaultBatch returns the batch fetched when none is given.
	DefaultBatch() string

	// CandidateID returns the configured candidate id.
	CandidateID() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
