package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/retry"
)

type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestPolicyDelay(t *testing.T) {
	p := retry.Policy{Attempts: 4, Backoff: time.Second}

	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 8*time.Second, p.Delay(3))
	assert.Equal(t, time.Second, p.Delay(-1))
}

func TestPolicyDelaySaturates(t *testing.T) {
	p := retry.Policy{Attempts: 100, Backoff: time.Second}

	prev := time.Duration(0)
	for attempt := 0; attempt < 100; attempt++ {
		d := p.Delay(attempt)
		require.Positive(t, d, "attempt %d", attempt)
		require.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}
	assert.Equal(t, time.Duration(1<<33)*time.Second, p.Delay(33))
	assert.Equal(t, retry.MaxDelay, p.Delay(34))
	assert.Equal(t, retry.MaxDelay, p.Delay(99))
	assert.Zero(t, retry.Policy{Attempts: 1}.Delay(5))
}

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, time.Second, p.Backoff)
	assert.NoError(t, p.Validate())

	assert.Error(t, retry.Policy{Attempts: 0}.Validate())
	assert.Error(t, retry.Policy{Attempts: 1, Backoff: -time.Second}.Validate())
}

func TestDoExhaustion(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	calls := 0

	err := retry.Do(context.Background(), retry.DefaultPolicy(), func(_ context.Context, attempt int) error {
		assert.Equal(t, calls, attempt)
		calls++
		return boom
	},
		retry.WithSleeper(rec.sleep),
		retry.WithLogger(logging.NewNopLogger()),
		retry.WithOperation("fetch"),
	)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, rec.delays)
	assert.True(t, pkgerrors.IsRetriesExhausted(err))
	assert.ErrorIs(t, err, boom)

	var retryErr *pkgerrors.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, "fetch", retryErr.Operation)
	assert.Equal(t, 3, retryErr.Attempts)
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	rec := &recorder{}
	tl := logging.NewTestLogger(t)

	err := retry.Do(context.Background(), retry.DefaultPolicy(), func(_ context.Context, attempt int) error {
		if attempt < 1 {
			return errors.New("transient")
		}
		return nil
	}, retry.WithSleeper(rec.sleep), retry.WithLogger(tl.Logger))

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
	tl.AssertContains(t, "Attempt failed")
	tl.AssertContains(t, "Succeeded after retry")
	tl.AssertNotContains(t, "Retries exhausted")
}

func TestDoFirstAttemptSuccess(t *testing.T) {
	rec := &recorder{}
	err := retry.Do(context.Background(), retry.DefaultPolicy(), func(context.Context, int) error {
		return nil
	}, retry.WithSleeper(rec.sleep), retry.WithLogger(logging.NewNopLogger()))

	require.NoError(t, err)
	assert.Empty(t, rec.delays)
}

func TestDoCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := retry.Do(ctx, retry.DefaultPolicy(), func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("boom")
	}, retry.WithLogger(logging.NewNopLogger()))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.True(t, pkgerrors.IsRetriesExhausted(err))
}

func TestDoCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := retry.Do(ctx, retry.DefaultPolicy(), func(context.Context, int) error {
		called = true
		return nil
	}, retry.WithLogger(logging.NewNopLogger()))

	assert.False(t, called)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep(t *testing.T) {
	require.NoError(t, retry.Sleep(context.Background(), time.Millisecond))
	require.NoError(t, retry.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, retry.Sleep(ctx, time.Hour), context.Canceled)
}
