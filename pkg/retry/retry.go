// Package retry runs an operation a bounded number of times with
// exponential backoff between attempts.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

// Policy defines retry behavior.
type Policy struct {
	Attempts int           `json:"attempts" yaml:"attempts"`
	Backoff  time.Duration `json:"backoff" yaml:"backoff"`
}

// DefaultPolicy returns three attempts with a one second base backoff.
func DefaultPolicy() Policy {
	return Policy{Attempts: constants.MaxRetries, Backoff: constants.RetryBackoff}
}

// MaxDelay caps a single backoff wait.
const MaxDelay = time.Duration(math.MaxInt64)

// Delay returns the wait after the zero-based attempt: Backoff * 2^attempt,
// saturating at MaxDelay instead of overflowing.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if p.Backoff <= 0 {
		return 0
	}
	if attempt >= 63 || p.Backoff > MaxDelay>>attempt {
		return MaxDelay
	}
	return p.Backoff << attempt
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.Attempts < 1 {
		return errors.NewValidationError("attempts", p.Attempts, "must be at least 1")
	}
	if p.Backoff < 0 {
		return errors.NewValidationError("backoff", p.Backoff, "must not be negative")
	}
	return nil
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Func is one attempt. attempt is zero based.
type Func func(ctx context.Context, attempt int) error

type options struct {
	sleep     Sleeper
	logger    *zerolog.Logger
	operation string
}

// Option configures Do.
type Option func(*options)

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) Option {
	return func(o *options) {
		if s != nil {
			o.sleep = s
		}
	}
}

// WithLogger sets the logger used for attempt failures.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOperation names the operation in logs and errors.
func WithOperation(name string) Option {
	return func(o *options) {
		o.operation = name
	}
}

// Do calls fn until it succeeds or the policy's attempts are used up.
// Every failed attempt, the last included, is followed by Delay(attempt).
// On exhaustion or cancellation Do returns a *errors.RetryError wrapping
// the last failure.
func Do(ctx context.Context, p Policy, fn Func, opts ...Option) error {
	o := options{
		sleep:     Sleep,
		logger:    logging.Default(),
		operation: "operation",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var last error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.NewRetryError(o.operation, attempt, err)
		}

		last = fn(ctx, attempt)
		if last == nil {
			if attempt > 0 {
				o.logger.Info().
					Str("operation", o.operation).
					Int("attempt", attempt+1).
					Msg("Succeeded after retry")
			}
			return nil
		}

		delay := p.Delay(attempt)
		o.logger.Warn().
			Err(last).
			Str("operation", o.operation).
			Int("attempt", attempt+1).
			Int("max_attempts", p.Attempts).
			Dur("backoff", delay).
			Msg("Attempt failed")

		if err := o.sleep(ctx, delay); err != nil {
			return errors.NewRetryError(o.operation, attempt+1, err)
		}
	}

	o.logger.Error().
		Err(last).
		Str("operation", o.operation).
		Int("attempts", p.Attempts).
		Msg("Retries exhausted")
	return errors.NewRetryError(o.operation, p.Attempts, last)
}
