// Package dedup drops records without a doc_id and later repeats of a
// doc_id, keeping the first occurrence.
package dedup

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
)

// SkipReason explains why a record was dropped.
type SkipReason string

// Skip reasons.
const (
	ReasonMissingDocID   SkipReason = "missing_doc_id"
	ReasonDuplicateDocID SkipReason = "duplicate_doc_id"
)

// SkipHook is called for every dropped record with its input index.
type SkipHook func(index int, rec records.CanonicalRecord, reason SkipReason)

// Result is the outcome of one Deduplicate call.
type Result struct {
	Items      []records.CleanedItem `json:"items"`
	MissingID  int                   `json:"missing_id"`
	Duplicates []string              `json:"duplicates,omitempty"`
}

// Skipped returns the number of dropped records.
func (r *Result) Skipped() int {
	return r.MissingID + len(r.Duplicates)
}

// Deduplicator filters canonical records by doc_id.
type Deduplicator struct {
	logger *zerolog.Logger
	hooks  []SkipHook
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Deduplicator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSkipHook registers a callback for dropped records.
func WithSkipHook(fn SkipHook) Option {
	return func(d *Deduplicator) {
		if fn != nil {
			d.hooks = append(d.hooks, fn)
		}
	}
}

// New returns a Deduplicator.
func New(opts ...Option) *Deduplicator {
	d := &Deduplicator{logger: logging.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deduplicate keeps, in input order, the first record for every
// non-empty doc_id. Other fields are passed through untouched.
func (d *Deduplicator) Deduplicate(recs []records.CanonicalRecord) *Result {
	d.logger.Info().Int("count", len(recs)).Msg("Normalized records received")

	seen := make(map[string]struct{}, len(recs))
	res := &Result{Items: make([]records.CleanedItem, 0, len(recs))}

	for i, rec := range recs {
		if rec.DocID == nil || *rec.DocID == "" {
			d.logger.Warn().Int("index", i).Msg("Record skipped due to missing doc_id")
			res.MissingID++
			d.skip(i, rec, ReasonMissingDocID)
			continue
		}

		id := *rec.DocID
		if _, dup := seen[id]; dup {
			d.logger.Warn().Int("index", i).Str("doc_id", id).Msg("Duplicate record skipped")
			res.Duplicates = append(res.Duplicates, id)
			d.skip(i, rec, ReasonDuplicateDocID)
			continue
		}

		seen[id] = struct{}{}
		res.Items = append(res.Items, records.NewCleanedItem(rec))
	}

	d.logger.Info().Int("count", len(res.Items)).Msg("Total records after deduplication")
	return res
}

func (d *Deduplicator) skip(i int, rec records.CanonicalRecord, reason SkipReason) {
	for _, fn := range d.hooks {
		fn(i, rec, reason)
	}
}
