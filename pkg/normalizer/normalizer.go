// Package normalizer maps raw upstream records onto the canonical
// six-field schema.
package normalizer

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/internal/utils/ptr"
	"github.com/agentstation/docsync/pkg/aliases"
	"github.com/agentstation/docsync/pkg/coerce"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/resolver"
)

// Normalizer resolves and coerces the canonical fields of raw records.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	resolver *resolver.Resolver
	coercer  *coerce.Coercer
	logger   *zerolog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithAliasTable sets the alias table used for field resolution.
func WithAliasTable(table *aliases.Table) Option {
	return func(n *Normalizer) {
		if table != nil {
			n.resolver = resolver.New(table)
		}
	}
}

// WithCoercer sets the date and amount coercer.
func WithCoercer(c *coerce.Coercer) Option {
	return func(n *Normalizer) {
		if c != nil {
			n.coercer = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New returns a Normalizer using the default alias table and date layouts
// unless overridden.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{logger: logging.Default()}
	for _, opt := range opts {
		opt(n)
	}
	if n.resolver == nil {
		n.resolver = resolver.New(aliases.Default())
	}
	if n.coercer == nil {
		n.coercer = coerce.New(coerce.WithLogger(n.logger))
	}
	return n
}

// Normalize returns exactly one CanonicalRecord per input record, in
// input order. Fields that cannot be resolved or coerced are left nil.
func (n *Normalizer) Normalize(raw []records.RawRecord) []records.CanonicalRecord {
	out := make([]records.CanonicalRecord, 0, len(raw))
	for i, rec := range raw {
		out = append(out, n.Record(i, rec))
	}
	n.logger.Info().Int("count", len(out)).Msg("Total records normalized")
	return out
}

// Record normalizes a single raw record. index is used for logging only.
func (n *Normalizer) Record(index int, rec records.RawRecord) records.CanonicalRecord {
	log := n.logger.With().Int("index", index).Logger()

	var out records.CanonicalRecord
	out.DocID = n.text(&log, rec, records.FieldDocID)
	out.Type = n.text(&log, rec, records.FieldType)
	out.Counterparty = n.text(&log, rec, records.FieldCounterparty)
	out.Project = n.text(&log, rec, records.FieldProject)

	if v := n.resolver.Field(rec, records.FieldExpiryDate); v == nil {
		skipped(&log, records.FieldExpiryDate, "unresolved")
	} else if d, ok := n.coercer.Date(v); ok {
		out.ExpiryDate = &d
	} else {
		skipped(&log, records.FieldExpiryDate, "unparseable")
	}

	if v := n.resolver.Field(rec, records.FieldAmount); v == nil {
		skipped(&log, records.FieldAmount, "unresolved")
	} else if a, ok := n.coercer.Amount(v); ok {
		out.Amount = &a
	} else {
		skipped(&log, records.FieldAmount, "unparseable")
	}

	log.Info().Interface("record", out.Map()).Msg("Normalized record")
	return out
}

func (n *Normalizer) text(log *zerolog.Logger, rec records.RawRecord, f records.Field) *string {
	v := n.resolver.Field(rec, f)
	if v == nil {
		skipped(log, f, "unresolved")
		return nil
	}
	s, ok := records.Stringify(v)
	if !ok {
		skipped(log, f, "not a scalar")
		return nil
	}
	return ptr.To(s)
}

func skipped(log *zerolog.Logger, f records.Field, reason string) {
	log.Debug().Str("field", string(f)).Str("reason", reason).Msg("Skipping field")
}
