// Package handlers provides HTTP request handlers for the docsync API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/internal/server/cache"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/validation"
	"github.com/agentstation/utc"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app       application.Application
	cache     *cache.Cache
	validator *validation.Validator
	logger    *zerolog.Logger
	startTime utc.Time
}

// New creates a new Handlers instance.
func New(app application.Application, c *cache.Cache, logger *zerolog.Logger, startTime utc.Time) *Handlers {
	return &Handlers{
		app:       app,
		cache:     c,
		validator: validation.New(),
		logger:    logger,
		startTime: startTime,
	}
}

// decodeBody reads a JSON request body into target. An empty body leaves
// target untouched.
func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, constants.MaxRequestBytes))
	if err != nil {
		return errors.WrapIO("read", "request body", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.WrapParse("json", "request body", err)
	}
	return nil
}
