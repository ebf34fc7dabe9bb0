package docsync

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/retry"
)

// config holds the options applied by New
type config struct {
	baseURL       string
	candidateID   string
	candidateName string
	policy        retry.Policy
	timeout       time.Duration
	aliasTable    *aliases.Table
	dateLayouts   []string
	httpClient    *http.Client
	sleeper       retry.Sleeper
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		baseURL:       constants.DefaultBaseURL,
		candidateName: constants.DefaultCandidateName,
		policy:        retry.DefaultPolicy(),
		timeout:       constants.DefaultHTTPTimeout,
		aliasTable:    aliases.Default(),
		sleeper:       retry.Sleep,
		logger:        logging.Default(),
	}
}

// Option is a function that configures a Client
type Option func(*config) error

// WithBaseURL sets the upstream API base URL
func WithBaseURL(url string) Option {
	return func(c *config) error {
		if url == "" {
			return errors.NewValidationError("base_url", url, "base URL is required")
		}
		c.baseURL = url
		return nil
	}
}

// WithCandidateID sets the X-Candidate-Id sent with every upstream request
func WithCandidateID(id string) Option {
	return func(c *config) error {
		c.candidateID = id
		return nil
	}
}

// WithCandidateName sets the submitter name sent with cleaned batches
func WithCandidateName(name string) Option {
	return func(c *config) error {
		if name != "" {
			c.candidateName = name
		}
		return nil
	}
}

// WithRetryPolicy sets the attempts and base backoff for upstream calls
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *config) error {
		if err := p.Validate(); err != nil {
			return err
		}
		c.policy = p
		return nil
	}
}

// WithTimeout sets the per-request timeout for upstream calls
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("timeout", d, "must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithAliasTable replaces the field alias table
func WithAliasTable(t *aliases.Table) Option {
	return func(c *config) error {
		if err := t.Validate(); err != nil {
			return err
		}
		c.aliasTable = t
		return nil
	}
}

// WithDateLayouts replaces the ordered list of accepted date layouts
func WithDateLayouts(layouts ...string) Option {
	return func(c *config) error {
		c.dateLayouts = layouts
		return nil
	}
}

// WithHTTPClient sets the http.Client used for upstream calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithSleeper replaces the retry backoff sleeper
func WithSleeper(s retry.Sleeper) Option {
	return func(c *config) error {
		if s != nil {
			c.sleeper = s
		}
		return nil
	}
}

// WithLogger sets the logger shared by every pipeline stage
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}
