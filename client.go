// Package docsync provides the main entry point for the document
// reconciliation pipeline. It fetches raw document batches from the
// upstream API, normalizes heterogeneous records into the canonical
// six-field schema, removes duplicates, validates, and submits the
// cleaned batch back.
//
// Example usage:
//
//	client, err := docsync.New(
//	    docsync.WithBaseURL("https://lumicore.example.com"),
//	    docsync.WithCandidateID(os.Getenv("X_CANDIDATE_ID")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRecordSkipped(func(index int, rec records.CanonicalRecord, reason dedup.SkipReason) {
//	    log.Printf("record %d skipped: %s", index, reason)
//	})
//
//	result, err := client.Run(ctx, "1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("submitted %d records\n", len(result.Cleaned))
package docsync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/coerce"
	"github.com/agentstation/docsync/pkg/dedup"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/normalizer"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/upstream"
	"github.com/agentstation/docsync/pkg/validation"
)

// Client runs the document pipeline against one upstream API.
type Client interface {
	// Fetch retrieves a raw batch from the upstream API
	Fetch(ctx context.Context, batch string) (*records.Batch, error)

	// Normalize maps raw records onto the canonical schema, one output per input
	Normalize(raw []records.RawRecord) []records.CanonicalRecord

	// Clean normalizes and deduplicates raw records
	Clean(raw []records.RawRecord) *dedup.Result

	// Validate returns the records failing the required-field rules
	Validate(recs []records.CanonicalRecord) []validation.InvalidRecord

	// Submit sends cleaned records for a batch to the upstream API
	Submit(ctx context.Context, batchID records.BatchID, recs []records.CanonicalRecord) (upstream.SubmitResponse, error)

	// Run fetches, cleans, validates and submits one batch
	Run(ctx context.Context, batch string, opts ...RunOption) (*RunResult, error)

	// AliasTable returns the alias table in use
	AliasTable() *aliases.Table

	// OnRecordSkipped registers a callback for records dropped during deduplication
	OnRecordSkipped(RecordSkippedHook)

	// OnBatchSubmitted registers a callback for successful submissions
	OnBatchSubmitted(BatchSubmittedHook)
}

// client is the internal implementation of the Client interface
type client struct {
	config     *config
	logger     *zerolog.Logger
	upstream   *upstream.Client
	normalizer *normalizer.Normalizer
	dedup      *dedup.Deduplicator
	validator  *validation.Validator
	hooks      *hooks
}

// New creates a new Client with the given options
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.WrapResource("create", "client", "", err)
		}
	}

	c := &client{
		config:    cfg,
		logger:    cfg.logger,
		validator: validation.New(),
		hooks:     newHooks(),
	}

	up, err := upstream.New(cfg.baseURL, cfg.candidateID,
		upstream.WithCandidateName(cfg.candidateName),
		upstream.WithRetryPolicy(cfg.policy),
		upstream.WithTimeout(cfg.timeout),
		upstream.WithHTTPClient(cfg.httpClient),
		upstream.WithSleeper(cfg.sleeper),
		upstream.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	c.upstream = up

	coercerOpts := []coerce.Option{coerce.WithLogger(cfg.logger)}
	if len(cfg.dateLayouts) > 0 {
		coercerOpts = append(coercerOpts, coerce.WithDateLayouts(cfg.dateLayouts...))
	}
	c.normalizer = normalizer.New(
		normalizer.WithAliasTable(cfg.aliasTable),
		normalizer.WithCoercer(coerce.New(coercerOpts...)),
		normalizer.WithLogger(cfg.logger),
	)
	c.dedup = dedup.New(
		dedup.WithLogger(cfg.logger),
		dedup.WithSkipHook(c.hooks.triggerRecordSkipped),
	)

	if cfg.candidateID == "" {
		c.logger.Warn().Msg("No candidate id configured; upstream requests will be rejected")
	}

	return c, nil
}

// Fetch retrieves a raw batch from the upstream API
func (c *client) Fetch(ctx context.Context, batch string) (*records.Batch, error) {
	return c.upstream.Fetch(ctx, batch)
}

// Normalize maps raw records onto the canonical schema
func (c *client) Normalize(raw []records.RawRecord) []records.CanonicalRecord {
	return c.normalizer.Normalize(raw)
}

// Clean normalizes and deduplicates raw records
func (c *client) Clean(raw []records.RawRecord) *dedup.Result {
	return c.dedup.Deduplicate(c.normalizer.Normalize(raw))
}

// Validate returns the records failing the required-field rules
func (c *client) Validate(recs []records.CanonicalRecord) []validation.InvalidRecord {
	return c.validator.Records(recs)
}

// Submit sends cleaned records for a batch to the upstream API
func (c *client) Submit(ctx context.Context, batchID records.BatchID, recs []records.CanonicalRecord) (upstream.SubmitResponse, error) {
	resp, err := c.upstream.Submit(ctx, batchID, recs)
	if err != nil {
		return nil, err
	}
	c.hooks.triggerBatchSubmitted(batchID, len(recs), resp)
	return resp, nil
}

// AliasTable returns the alias table in use
func (c *client) AliasTable() *aliases.Table {
	return c.config.aliasTable
}

// OnRecordSkipped registers a callback for records dropped during deduplication
func (c *client) OnRecordSkipped(fn RecordSkippedHook) {
	c.hooks.OnRecordSkipped(fn)
}

// OnBatchSubmitted registers a callback for successful submissions
func (c *client) OnBatchSubmitted(fn BatchSubmittedHook) {
	c.hooks.OnBatchSubmitted(fn)
}
