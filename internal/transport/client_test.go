package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/pkg/errors"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "cand-1", r.Header.Get("X-Candidate-Id"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(HeaderAuth{Header: "X-Candidate-Id", Value: "cand-1"})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	var out map[string]bool
	require.NoError(t, DecodeResponse(resp, &out))
	assert.True(t, out["ok"])
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"batch_id":"7"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"accepted":1}`))
	}))
	defer srv.Close()

	resp, err := New(nil).PostJSON(context.Background(), srv.URL, map[string]string{"batch_id": "7"})
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, DecodeResponse(resp, &out))
	assert.Equal(t, 1, out["accepted"])
}

func TestDecodeResponseErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		parse       bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", unavailable: true},
		{name: "not found", status: http.StatusNotFound, body: ""},
		{name: "bad json", status: http.StatusOK, body: "<html>", parse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := New(nil).Get(context.Background(), srv.URL)
			require.NoError(t, err)

			var out json.RawMessage
			err = DecodeResponse(resp, &out)
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, errors.IsUpstreamUnavailable(err))

			var parseErr *errors.ParseError
			assert.Equal(t, tt.parse, errors.As(err, &parseErr))
			if !tt.parse {
				var apiErr *errors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.StatusCode)
			}
		})
	}
}

func TestClientTimeout(t *testing.T) {
	assert.Equal(t, DefaultHTTPTimeout, New(nil).Timeout())
	assert.Equal(t, 2*time.Second, New(nil, WithTimeout(2*time.Second)).Timeout())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(nil, WithTimeout(20*time.Millisecond)).Get(context.Background(), srv.URL)
	require.Error(t, err)
	var apiErr *errors.APIError
	assert.ErrorAs(t, err, &apiErr)
}
