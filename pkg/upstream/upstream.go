// Package upstream is the client for the remote document API: it fetches
// raw batches and submits cleaned ones, retrying each call with
// exponential backoff.
package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/internal/transport"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/retry"
)

// SubmitResponse is the upstream's decoded reply to a submission.
type SubmitResponse map[string]any

// SubmitPayload is the request body sent to the submit endpoint.
type SubmitPayload struct {
	CandidateName string                    `json:"candidate_name"`
	BatchID       string                    `json:"batch_id"`
	CleanedItems  []records.CanonicalRecord `json:"cleaned_items"`
}

// Client talks to the upstream document API. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	baseURL       string
	candidateName string
	policy        retry.Policy
	timeout       time.Duration
	httpClient    *http.Client
	sleeper       retry.Sleeper
	logger        *zerolog.Logger
	transport     *transport.Client
}

// Option configures a Client.
type Option func(*Client)

// WithCandidateName sets the submitter name sent with cleaned batches.
func WithCandidateName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.candidateName = name
		}
	}
}

// WithRetryPolicy sets the attempts and base backoff.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Client) {
		c.sleeper = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the API at baseURL identifying itself with
// candidateID. An empty candidateID sends no identity header.
func New(baseURL, candidateID string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.NewValidationError("base_url", baseURL, "base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("base_url", baseURL, "base URL must be an absolute http(s) URL")
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		candidateName: constants.DefaultCandidateName,
		policy:        retry.DefaultPolicy(),
		timeout:       constants.DefaultHTTPTimeout,
		sleeper:       retry.Sleep,
		logger:        logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.policy.Validate(); err != nil {
		return nil, err
	}

	topts := []transport.Option{transport.WithTimeout(c.timeout)}
	if c.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(c.httpClient))
	}
	var auth transport.Authenticator = transport.NoAuth{}
	if candidateID != "" {
		auth = transport.HeaderAuth{Header: constants.CandidateHeader, Value: candidateID}
	}
	c.transport = transport.New(auth, topts...)

	return c, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// fetchBody is the data endpoint reply. Records is a pointer so an absent
// or null array can be told apart from an empty one.
type fetchBody struct {
	BatchID records.BatchID      `json:"batch_id"`
	Records *[]records.RawRecord `json:"records"`
}

// Fetch retrieves one raw batch. A reply without a records array counts
// as a failed attempt. After the retry policy is exhausted it
// returns nil and a *errors.RetryError.
func (c *Client) Fetch(ctx context.Context, batch string) (*records.Batch, error) {
	if batch == "" {
		batch = constants.DefaultBatch
	}
	endpoint := c.baseURL + constants.DataPath + "?batch=" + url.QueryEscape(batch)
	log := c.logger.With().Str("batch", batch).Logger()
	log.Info().Str("url", endpoint).Msg("Fetching data from upstream API")

	var out *records.Batch
	err := retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) error {
		resp, err := c.transport.Get(ctx, endpoint)
		if err != nil {
			return err
		}
		var body fetchBody
		if err := transport.DecodeResponse(resp, &body); err != nil {
			return err
		}
		if body.Records == nil {
			return errors.NewParseError("json", "response", "missing records array", nil)
		}
		b := records.Batch{BatchID: body.BatchID, Records: *body.Records}
		log.Info().Int("attempt", attempt+1).Int("records", len(b.Records)).Msg("Successfully fetched data")
		out = &b
		return nil
	}, c.retryOptions("fetch", &log)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Submit posts cleaned records for batchID. Each record is sent as
// exactly the six canonical fields. After the retry policy is exhausted
// it returns nil and a *errors.RetryError.
func (c *Client) Submit(ctx context.Context, batchID records.BatchID, recs []records.CanonicalRecord) (SubmitResponse, error) {
	endpoint := c.baseURL + constants.SubmitPath
	payload := NewSubmitPayload(c.candidateName, batchID, recs)

	log := c.logger.With().Str("batch_id", payload.BatchID).Logger()
	log.Info().Int("records", len(payload.CleanedItems)).Msg("Submitting cleaned records")

	var out SubmitResponse
	err := retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) error {
		resp, err := c.transport.PostJSON(ctx, endpoint, payload)
		if err != nil {
			return err
		}
		var r SubmitResponse
		if err := transport.DecodeResponse(resp, &r); err != nil {
			return err
		}
		log.Info().Int("attempt", attempt+1).Msg("Submission successful")
		out = r
		return nil
	}, c.retryOptions("submit", &log)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewSubmitPayload builds the submit body. A nil record list is sent as
// an empty array.
func NewSubmitPayload(candidateName string, batchID records.BatchID, recs []records.CanonicalRecord) SubmitPayload {
	items := make([]records.CanonicalRecord, len(recs))
	copy(items, recs)
	return SubmitPayload{
		CandidateName: candidateName,
		BatchID:       batchID.String(),
		CleanedItems:  items,
	}
}

func (c *Client) retryOptions(op string, log *zerolog.Logger) []retry.Option {
	return []retry.Option{
		retry.WithOperation(op),
		retry.WithLogger(log),
		retry.WithSleeper(c.sleeper),
	}
}
