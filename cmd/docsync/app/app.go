// Package app provides the application context and dependency management
// for the docsync CLI. It centralizes configuration, logging and the
// lifecycle of the shared docsync client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/retry"
)

var _ application.Application = (*App)(nil)

// App represents the docsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	v      *viper.Viper
	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client docsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		v:       newViper(),
	}

	config, err := LoadConfig(app.v)
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured format, or the format detected
// from stdout when none was given.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// DefaultBatch returns the batch fetched when none is given.
func (a *App) DefaultBatch() string {
	return a.config.DefaultBatch
}

// CandidateID returns the configured candidate id.
func (a *App) CandidateID() string {
	return a.config.CandidateID
}

// Client returns the docsync client, creating it lazily if needed.
// Options build a fresh instance on top of the configured ones instead.
func (a *App) Client(opts ...docsync.Option) (docsync.Client, error) {
	if len(opts) > 0 {
		base, err := a.clientOptions()
		if err != nil {
			return nil, err
		}
		c, err := docsync.New(append(base, opts...)...)
		if err != nil {
			return nil, errors.WrapResource("create", "client", "with custom options", err)
		}
		return c, nil
	}

	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	base, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := docsync.New(base...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// Shutdown releases the cached client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
	return nil
}

// clientOptions builds docsync options from the configuration.
func (a *App) clientOptions() ([]docsync.Option, error) {
	cfg := a.config
	opts := []docsync.Option{
		docsync.WithBaseURL(cfg.BaseURL),
		docsync.WithCandidateID(cfg.CandidateID),
		docsync.WithCandidateName(cfg.CandidateName),
		docsync.WithRetryPolicy(retry.Policy{Attempts: cfg.Retries, Backoff: cfg.Backoff}),
		docsync.WithTimeout(cfg.Timeout),
		docsync.WithLogger(a.logger),
	}

	if cfg.AliasFile != "" {
		table, err := aliases.LoadFile(cfg.AliasFile)
		if err != nil {
			return nil, errors.NewConfigError("aliases", "loading "+cfg.AliasFile, err)
		}
		opts = append(opts, docsync.WithAliasTable(table))
	}

	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c docsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
