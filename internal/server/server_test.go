package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/cmd/application"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
)

const upstreamBatch = `{
	"batch_id": 3,
	"records": [
		{"id": "D1", "category": "NDA", "vendor": "Acme", "project_name": "X", "expiry": "2024-01-15", "value": "100"},
		{"id": "D1", "category": "dup"},
		{"vendor": "no id"}
	]
}`

type fakeUpstream struct {
	*httptest.Server
	fetches     atomic.Int32
	submits     atomic.Int32
	lastSubmit  atomic.Value
	fetchStatus atomic.Int32
	fetchBody   atomic.Value
}

func newFakeUpstream(t *testing.T, fetchStatus int) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.fetchStatus.Store(int32(fetchStatus))
	f.fetchBody.Store(upstreamBatch)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, _ *http.Request) {
		f.fetches.Add(1)
		status := int(f.fetchStatus.Load())
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(f.fetchBody.Load().(string)))
		}
	})
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		f.submits.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.lastSubmit.Store(string(body))
		_, _ = w.Write([]byte(`{"accepted":true}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestServer(t *testing.T, upstreamURL string, mutate func(*Config)) *Server {
	t.Helper()

	client, err := docsync.New(
		docsync.WithBaseURL(upstreamURL),
		docsync.WithCandidateID("cand-1"),
		docsync.WithLogger(logging.NewNopLogger()),
		docsync.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
	require.NoError(t, err)

	app := &application.Mock{
		ClientFunc: func(...docsync.Option) (docsync.Client, error) { return client, nil },
	}

	cfg := DefaultConfig()
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := New(app, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

type envelope struct {
	HasError  bool           `json:"hasError"`
	ErrorCode int            `json:"errorCode"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestNew(t *testing.T) {
	t.Run("normalizes prefix", func(t *testing.T) {
		srv := newTestServer(t, "http://localhost:8000", func(c *Config) {
			c.PathPrefix = "v2/"
			c.CacheTTL = 0
		})
		assert.Equal(t, "/v2", srv.Config().PathPrefix)
		assert.Greater(t, srv.Config().CacheTTL, time.Duration(0))
		assert.False(t, srv.StartTime().Time.IsZero())
	})

	t.Run("client error is returned", func(t *testing.T) {
		app := &application.Mock{
			ClientFunc: func(...docsync.Option) (docsync.Client, error) {
				return nil, errors.NewConfigError("client", "bad base url", nil)
			},
		}
		_, err := New(app, DefaultConfig())
		require.Error(t, err)
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "http://localhost:8000", func(c *Config) { c.CandidateID = "cand-1" })
	h := srv.Handler()

	for _, path := range []string{"/health", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			w, env := do(t, h, http.MethodGet, path, nil, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, env.HasError)
			assert.Equal(t, -1, env.ErrorCode)
			assert.Equal(t, "Success", env.Message)
			assert.Equal(t, "healthy", env.Data["status"])
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestFetchRaw(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK)
	h := newTestServer(t, up.URL, nil).Handler()

	w, env := do(t, h, http.MethodGet, "/api/fetch-raw?batch=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.HasError)
	assert.Equal(t, float64(3), env.Data["batchId"])
	assert.Len(t, env.Data["records"], 3)
	assert.Equal(t, int32(1), up.fetches.Load())

	t.Run("served from cache", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/fetch-raw?batch=3", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, env.Data["records"], 3)
		assert.Equal(t, int32(1), up.fetches.Load())
	})

	t.Run("refresh bypasses cache", func(t *testing.T) {
		w, _ := do(t, h, http.MethodGet, "/api/fetch-raw?batch=3&refresh=true", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int32(2), up.fetches.Load())
	})

	t.Run("failed refresh drops cached batch", func(t *testing.T) {
		up.fetchStatus.Store(http.StatusBadGateway)
		defer up.fetchStatus.Store(http.StatusOK)

		w, env := do(t, h, http.MethodGet, "/api/fetch-raw?batch=3&refresh=true", nil, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1001, env.ErrorCode)

		w, _ = do(t, h, http.MethodGet, "/api/fetch-raw?batch=3", nil, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, int32(8), up.fetches.Load())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w, env := do(t, h, http.MethodPost, "/api/fetch-raw", nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.True(t, env.HasError)
	})
}

func TestFetchRaw_UpstreamFailure(t *testing.T) {
	up := newFakeUpstream(t, http.StatusBadGateway)
	h := newTestServer(t, up.URL, nil).Handler()

	w, env := do(t, h, http.MethodGet, "/api/fetch-raw", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, env.HasError)
	assert.Equal(t, 1001, env.ErrorCode)
	assert.Equal(t, "Something went wrong", env.Message)
	assert.Equal(t, map[string]any{}, env.Data)
	assert.Equal(t, int32(3), up.fetches.Load())
}

func TestFetchRaw_MissingRecords(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"batch_id": 3}`} {
		t.Run(body, func(t *testing.T) {
			up := newFakeUpstream(t, http.StatusOK)
			up.fetchBody.Store(body)
			h := newTestServer(t, up.URL, nil).Handler()

			w, env := do(t, h, http.MethodGet, "/api/fetch-raw?batch=3", nil, nil)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.True(t, env.HasError)
			assert.Equal(t, 1001, env.ErrorCode)
			assert.Equal(t, int32(3), up.fetches.Load())
		})
	}
}

func TestFetchClean(t *testing.T) {
	h := newTestServer(t, "http://localhost:8000", nil).Handler()

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   int
		wantItems  int
	}{
		{
			name: "normalizes and deduplicates",
			body: map[string]any{
				"batchId": 3,
				"records": []map[string]any{
					{"id": "D1", "category": "NDA", "value": "1,000"},
					{"id": "D1", "category": "dup"},
					{"vendor": "no id"},
					{"documentId": "D2", "docType": "MSA"},
				},
			},
			wantStatus: http.StatusOK,
			wantCode:   -1,
			wantItems:  2,
		},
		{
			name:       "missing batch id",
			body:       map[string]any{"records": []map[string]any{{"id": "D1"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   1002,
		},
		{
			name:       "empty records",
			body:       map[string]any{"batchId": "3", "records": []any{}},
			wantStatus: http.StatusBadRequest,
			wantCode:   1002,
		},
		{
			name:       "zero batch id",
			body:       map[string]any{"batchId": 0, "records": []map[string]any{{"id": "D1"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   1002,
		},
		{
			name: "string zero batch id",
			body: map[string]any{
				"batchId": "0",
				"records": []map[string]any{{"id": "D1", "category": "NDA", "value": "1,000"}},
			},
			wantStatus: http.StatusOK,
			wantCode:   -1,
			wantItems:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, h, http.MethodPost, "/api/fetch-clean", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, env.ErrorCode)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "batch_id and records are required", env.Message)
				return
			}

			items, ok := env.Data["cleanedItems"].([]any)
			require.True(t, ok)
			require.Len(t, items, tt.wantItems)

			first := items[0].(map[string]any)
			assert.Equal(t, "D1", first["docId"])
			assert.Equal(t, "NDA", first["type"])
			assert.Equal(t, float64(1000), first["amount"])
			assert.Nil(t, first["expiryDate"])
		})
	}
}

func TestSubmitClean(t *testing.T) {
	valid := map[string]any{
		"docId":        "D1",
		"type":         "NDA",
		"counterparty": "Acme",
		"project":      "X",
		"expiryDate":   "2024-01-15",
		"amount":       100.5,
	}

	t.Run("submits camelCase items as snake_case", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusOK)
		h := newTestServer(t, up.URL, nil).Handler()

		w, env := do(t, h, http.MethodPost, "/api/submit-clean",
			map[string]any{"batchId": 3, "cleanedItems": []any{valid}}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.HasError)
		assert.Equal(t, "Submission successful", env.Message)
		assert.Equal(t, true, env.Data["accepted"])

		var sent map[string]any
		require.NoError(t, json.Unmarshal([]byte(up.lastSubmit.Load().(string)), &sent))
		assert.Equal(t, "3", sent["batch_id"])
		items := sent["cleaned_items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "2024-01-15", items[0].(map[string]any)["expiry_date"])
	})

	t.Run("string zero batch id", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusOK)
		h := newTestServer(t, up.URL, nil).Handler()

		w, env := do(t, h, http.MethodPost, "/api/submit-clean",
			map[string]any{"batchId": "0", "cleanedItems": []any{valid}}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.HasError)

		var sent map[string]any
		require.NoError(t, json.Unmarshal([]byte(up.lastSubmit.Load().(string)), &sent))
		assert.Equal(t, "0", sent["batch_id"])
	})

	t.Run("missing items", func(t *testing.T) {
		h := newTestServer(t, "http://localhost:8000", nil).Handler()

		w, env := do(t, h, http.MethodPost, "/api/submit-clean", map[string]any{"batchId": 3}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1003, env.ErrorCode)
		assert.Equal(t, "batch and cleaned_items are required", env.Message)
	})

	t.Run("invalid records", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusOK)
		h := newTestServer(t, up.URL, nil).Handler()

		bad := map[string]any{"docId": "D2", "type": " ", "expiryDate": "15/01/2024"}
		w, env := do(t, h, http.MethodPost, "/api/submit-clean",
			map[string]any{"batchId": 3, "cleanedItems": []any{valid, bad}}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 1004, env.ErrorCode)
		assert.Equal(t, "Some records are invalid", env.Message)

		invalid, ok := env.Data["invalid_records"].([]any)
		require.True(t, ok)
		require.Len(t, invalid, 1)
		rec := invalid[0].(map[string]any)
		assert.Equal(t, float64(2), rec["index"])
		assert.Equal(t, "D2", rec["doc_id"])
		assert.Contains(t, rec["errors"], "type")
		assert.Contains(t, rec["errors"], "expiry_date")
		assert.Equal(t, int32(0), up.submits.Load())
	})

	t.Run("upstream unavailable", func(t *testing.T) {
		h := newTestServer(t, "http://127.0.0.1:1", nil).Handler()

		w, env := do(t, h, http.MethodPost, "/api/submit-clean",
			map[string]any{"batchId": 3, "cleanedItems": []any{valid}}, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1005, env.ErrorCode)
		assert.Equal(t, "Server is unavailable, please try again later", env.Message)
	})
}

func TestCandidateCheck(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK)
	h := newTestServer(t, up.URL, func(c *Config) { c.CandidateID = "cand-1" }).Handler()

	w, env := do(t, h, http.MethodGet, "/api/fetch-raw", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1002, env.ErrorCode)
	assert.Equal(t, "Invalid candidate.", env.Message)

	w, _ = do(t, h, http.MethodGet, "/api/fetch-raw", nil, map[string]string{"X-Candidate-Id": "cand-1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, "http://localhost:8000", func(c *Config) {
		c.RateLimit = 2
		c.RateBurst = 2
	}).Handler()

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w, _ := do(t, h, http.MethodGet, "/health", nil, nil)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
