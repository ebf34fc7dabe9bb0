package docsync

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/upstream"
	"github.com/agentstation/docsync/pkg/validation"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	BatchID    records.BatchID            `json:"batch_id" yaml:"batch_id"`
	Fetched    int                        `json:"fetched" yaml:"fetched"`
	Cleaned    []records.CleanedItem      `json:"cleaned" yaml:"cleaned"`
	MissingID  int                        `json:"missing_id" yaml:"missing_id"`
	Duplicates []string                   `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Invalid    []validation.InvalidRecord `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	Submitted  bool                       `json:"submitted" yaml:"submitted"`
	Response   upstream.SubmitResponse    `json:"response,omitempty" yaml:"response,omitempty"`
	StartedAt  utc.Time                   `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time                   `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the run took.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Time.Sub(r.StartedAt.Time)
}

// RunOption configures a single Run.
type RunOption func(*runOptions)

type runOptions struct {
	dryRun bool
}

// WithDryRun stops the run after validation without submitting.
func WithDryRun(enabled bool) RunOption {
	return func(o *runOptions) {
		o.dryRun = enabled
	}
}

// Run fetches a batch, cleans and validates it, then submits it. When
// any cleaned record is invalid the run stops before submission and
// returns the partial result with a *validation.Error.
func (c *client) Run(ctx context.Context, batch string, opts ...RunOption) (*RunResult, error) {
	o := &runOptions{}
	for _, opt := range opts {
		opt(o)
	}

	res := &RunResult{StartedAt: utc.Now()}
	defer func() { res.FinishedAt = utc.Now() }()

	log := c.logger.With().Str("batch", batch).Logger()
	ctx = logging.WithLogger(ctx, &log)

	raw, err := c.upstream.Fetch(ctx, batch)
	if err != nil {
		return res, errors.WrapResource("fetch", "batch", batch, err)
	}
	res.BatchID = raw.BatchID
	res.Fetched = len(raw.Records)

	cleaned := c.Clean(raw.Records)
	res.Cleaned = cleaned.Items
	res.MissingID = cleaned.MissingID
	res.Duplicates = cleaned.Duplicates

	canonical := make([]records.CanonicalRecord, len(cleaned.Items))
	for i, item := range cleaned.Items {
		canonical[i] = item.Canonical()
	}

	if err := c.validator.Check(canonical); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			res.Invalid = verr.Invalid
		}
		log.Error().Int("invalid", len(res.Invalid)).Msg("Validation failed, batch not submitted")
		return res, err
	}

	if o.dryRun {
		log.Info().Int("records", len(canonical)).Msg("Dry run, skipping submission")
		return res, nil
	}

	resp, err := c.Submit(ctx, raw.BatchID, canonical)
	if err != nil {
		return res, errors.WrapResource("submit", "batch", raw.BatchID.String(), err)
	}
	res.Submitted = true
	res.Response = resp

	logging.FromContext(ctx).Info().
		Int("fetched", res.Fetched).
		Int("submitted", len(canonical)).
		Msg("Batch processed")
	return res, nil
}
