package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/docsync/pkg/errors"
)

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("doc_id", "", "cannot be blank")
		assert.Equal(t, "validation failed for field doc_id: cannot be blank", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty alias table"}
		assert.Equal(t, "validation failed: empty alias table", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		unavailable bool
		rateLimited bool
	}{
		{name: "server error", status: http.StatusInternalServerError, unavailable: true},
		{name: "bad gateway", status: http.StatusBadGateway, unavailable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, rateLimited: true},
		{name: "bad request", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pkgerrors.NewAPIError("http://upstream/api/data", tt.status, "boom")
			assert.Contains(t, err.Error(), "http://upstream/api/data")
			assert.Contains(t, err.Error(), fmt.Sprintf("%d", tt.status))
			assert.Equal(t, tt.unavailable, pkgerrors.IsUpstreamUnavailable(err))
			assert.Equal(t, tt.rateLimited, pkgerrors.IsRateLimited(err))
		})
	}

	t.Run("without status", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.WrapAPI("http://upstream", 0, base)
		assert.Equal(t, "API error from http://upstream: connection refused", err.Error())
		assert.True(t, errors.Is(err, base))
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("no such file")
	err := pkgerrors.NewConfigError("aliases", "failed to load alias file", base)
	assert.Equal(t, "configuration error in aliases: failed to load alias file", err.Error())
	assert.Equal(t, base, err.Unwrap())

	bare := &pkgerrors.ConfigError{Message: "base url required"}
	assert.Equal(t, "configuration error: base url required", bare.Error())
}

func TestParseError(t *testing.T) {
	t.Run("with file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "aliases.yaml", "invalid indentation", nil)
		assert.Equal(t, "parse error in yaml file aliases.yaml: invalid indentation", err.Error())
	})

	t.Run("wrap without file", func(t *testing.T) {
		base := errors.New("unexpected EOF")
		err := pkgerrors.WrapParse("json", "", base)
		var parseErr *pkgerrors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "json parse error: unexpected EOF", parseErr.Error())
		assert.Equal(t, base, parseErr.Unwrap())
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("read", "/tmp/batch.json", base)

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Operation)
	assert.Contains(t, err.Error(), "/tmp/batch.json")
	assert.True(t, errors.Is(err, base))
}

func TestResourceError(t *testing.T) {
	err := pkgerrors.WrapResource("fetch", "batch", "7", errors.New("timeout"))
	assert.Equal(t, "failed to fetch batch 7: timeout", err.Error())

	err = pkgerrors.NewResourceError("create", "client", "", errors.New("missing base url"))
	assert.Equal(t, "failed to create client: missing base url", err.Error())
}

func TestCoercionError(t *testing.T) {
	err := &pkgerrors.CoercionError{Kind: "date", Value: "not a date"}
	assert.Equal(t, `unable to parse date "not a date"`, err.Error())
	assert.True(t, pkgerrors.IsValidationError(err))

	base := errors.New("invalid syntax")
	err = &pkgerrors.CoercionError{Kind: "amount", Value: "abc", Err: base}
	assert.Contains(t, err.Error(), "invalid syntax")
	assert.True(t, errors.Is(err, base))
}

func TestRetryError(t *testing.T) {
	last := pkgerrors.NewAPIError("http://upstream/api/data", http.StatusServiceUnavailable, "down")
	err := pkgerrors.NewRetryError("fetch", 3, last)

	assert.Equal(t, "fetch failed after 3 attempts: "+last.Error(), err.Error())
	assert.True(t, pkgerrors.IsRetriesExhausted(err))
	assert.True(t, pkgerrors.IsUpstreamUnavailable(err))

	var apiErr *pkgerrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestHelperFunctions(t *testing.T) {
	assert.True(t, pkgerrors.IsNotFound(fmt.Errorf("batch: %w", pkgerrors.ErrNotFound)))
	assert.False(t, pkgerrors.IsNotFound(errors.New("not found")))

	assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
	assert.True(t, pkgerrors.IsCanceled(context.Canceled))

	assert.True(t, pkgerrors.IsTimeout(pkgerrors.ErrTimeout))
	assert.True(t, pkgerrors.IsTimeout(context.DeadlineExceeded))

	canceled := pkgerrors.NewRetryError("submit", 1, context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(canceled))
}

func TestWrapHelpersNil(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapValidation("field", nil))
	assert.Nil(t, pkgerrors.WrapIO("read", "file", nil))
	assert.Nil(t, pkgerrors.WrapResource("create", "client", "", nil))
	assert.Nil(t, pkgerrors.WrapParse("yaml", "file.yaml", nil))
	assert.Nil(t, pkgerrors.WrapAPI("upstream", 200, nil))
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", pkgerrors.ErrNotFound},
		{"ErrInvalidInput", pkgerrors.ErrInvalidInput},
		{"ErrUpstreamUnavailable", pkgerrors.ErrUpstreamUnavailable},
		{"ErrRateLimited", pkgerrors.ErrRateLimited},
		{"ErrTimeout", pkgerrors.ErrTimeout},
		{"ErrCanceled", pkgerrors.ErrCanceled},
		{"ErrRetriesExhausted", pkgerrors.ErrRetriesExhausted},
	}

	for _, tc := range sentinels {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotNil(t, tc.err)
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}
